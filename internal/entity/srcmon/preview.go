package srcmon

import (
	"context"
	"path/filepath"

	"github.com/Kargones/apk-metrics/internal/constants"
)

// Preview: запланированный запуск без побочных эффектов.
type Preview struct {
	Target     string
	Kind       string
	Files      ReportFiles
	ScriptPath string
	Excluded   []string
	Script     []byte
	Inventory  Inventory
}

// Preview вычисляет артефакты, исключения и командный файл цели, ничего
// не удаляя, не записывая и не запуская.
func (d *Driver) Preview(ctx context.Context, target AnalysisTarget) (*Preview, error) {
	log := d.logger().With("target", target.Name(), "kind", target.Kind())

	reportDir := target.ReportDir(d.Options)
	p := &Preview{
		Target:     target.Name(),
		Kind:       target.Kind(),
		Files:      ReportPaths(reportDir, d.Options.ReportFileName),
		ScriptPath: filepath.Join(reportDir, constants.CommandScriptFileName),
		Excluded:   target.ResolveExclusions(d.Options, log),
	}

	script := target.BuildScript(d.Options, p.Files, p.Excluded)
	data, err := script.Marshal()
	if err != nil {
		return nil, err
	}
	p.Script = data

	inv, err := SourceInventory(ctx, script.SourcePath, script.Language, script.ExcludedExtensions, script.ExcludedDirectories)
	if err != nil {
		log.Warn("Не удалось подсчитать исходники", "source", script.SourcePath, "error", err.Error())
	}
	p.Inventory = inv
	return p, nil
}
