package metricshandler

import (
	"fmt"
	"path/filepath"

	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/entity/srcmon"
	"github.com/Kargones/apk-metrics/internal/entity/workspace"
	"github.com/Kargones/apk-metrics/internal/pkg/apperrors"
)

// buildOptions собирает srcmon.Options из конфигурации и описания решения.
// Относительные sourceDir и reportDir считаются от baseDir решения.
func buildOptions(sm *config.SourceMonitorConfig, ws *workspace.Workspace) (srcmon.Options, error) {
	checkpoint := sm.Checkpoint
	if checkpoint == "" {
		checkpoint = ws.Version
	}
	if checkpoint == "" {
		return srcmon.Options{}, apperrors.NewAppError(apperrors.ErrConfigValidate,
			"не задан checkpoint: BR_METRICS_CHECKPOINT или version в описании решения", nil)
	}

	opts := srcmon.Options{
		ExecutableDir:   sm.ExecutableDir,
		Executable:      sm.Executable,
		SourceDir:       resolveDir(ws.BaseDir, sm.SourceDir, ""),
		ReportDir:       resolveDir(ws.BaseDir, sm.ReportDir, filepath.FromSlash(constants.DefaultReportSubDir)),
		ReportFileName:  sm.ReportFileName,
		Checkpoint:      checkpoint,
		Language:        sm.Language,
		Attempts:        sm.Attempts,
		AttemptTimeout:  sm.AttemptTimeout,
		ConsoleEncoding: sm.ConsoleEncoding,
	}
	return opts.WithExcludedExtensions(sm.ExcludedExtensions...), nil
}

func resolveDir(base, dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// selectTargets возвращает цели анализа в порядке запуска.
//
// В режиме project анализируются нетестовые и непропущенные проекты
// в порядке описания. Явно заданный BR_METRICS_PROJECT анализируется
// даже если он тестовый или пропущен.
func selectTargets(sm *config.SourceMonitorConfig, ws *workspace.Workspace, skip workspace.SkipList) ([]srcmon.AnalysisTarget, error) {
	if sm.Target != constants.TargetProject {
		return []srcmon.AnalysisTarget{srcmon.SolutionTarget{Workspace: ws, Skip: skip}}, nil
	}

	if sm.Project != "" {
		p, ok := ws.Project(sm.Project)
		if !ok {
			return nil, apperrors.NewAppError(apperrors.ErrWorkspaceInvalid,
				fmt.Sprintf("проект %q не найден в решении %s", sm.Project, ws.Name), nil)
		}
		return []srcmon.AnalysisTarget{srcmon.ProjectTarget{Project: p}}, nil
	}

	var targets []srcmon.AnalysisTarget
	for _, p := range ws.Projects {
		if p.Test || skip.Contains(p.Name) {
			continue
		}
		targets = append(targets, srcmon.ProjectTarget{Project: p})
	}
	if len(targets) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrWorkspaceInvalid,
			fmt.Sprintf("в решении %s нет проектов для анализа", ws.Name), nil)
	}
	return targets, nil
}
