package metricshandler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/entity/srcmon"
	"github.com/Kargones/apk-metrics/internal/entity/workspace"
	"github.com/Kargones/apk-metrics/internal/pkg/dryrun"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
)

// PreviewData: результат dry-run для одной цели.
type PreviewData struct {
	Target     string           `json:"target"`
	Kind       string           `json:"kind"`
	ScriptPath string           `json:"script_path"`
	ReportFile string           `json:"report_file"`
	Excluded   []string         `json:"excluded"`
	Inventory  srcmon.Inventory `json:"inventory"`
	// PreviousCheckpoint: checkpoint последнего успешного запуска из истории.
	PreviousCheckpoint string `json:"previous_checkpoint,omitempty"`
	Script             string `json:"script"`
}

// DryRunData: результат dry-run команды.
type DryRunData struct {
	Workspace  string        `json:"workspace"`
	Checkpoint string        `json:"checkpoint"`
	Mode       string        `json:"mode"`
	Targets    []PreviewData `json:"targets"`
}

// executeDryRun строит план без удаления артефактов, записи командного
// файла и запуска SourceMonitor. Из истории только читается checkpoint.
func (h *MetricsHandler) executeDryRun(
	ctx context.Context,
	cfg *config.Config,
	driver *srcmon.Driver,
	ws *workspace.Workspace,
	targets []srcmon.AnalysisTarget,
	format, traceID string,
	start time.Time,
	log logging.Logger,
) error {
	log.Info("Dry-run: построение плана", "targets", len(targets))

	history := h.openHistory(ctx, cfg.HistoryConfig, log)
	defer closeHistory(history, log)

	data := &DryRunData{
		Workspace:  ws.Name,
		Checkpoint: driver.Options.Checkpoint,
		Mode:       cfg.SourceMonitorConfig.Target,
		Targets:    make([]PreviewData, 0, len(targets)),
	}
	var steps []output.PlanStep
	for _, target := range targets {
		p, err := driver.Preview(ctx, target)
		if err != nil {
			return h.writeError(format, traceID, start, nil, err)
		}
		pd := PreviewData{
			Target:             p.Target,
			Kind:               p.Kind,
			ScriptPath:         p.ScriptPath,
			ReportFile:         p.Files.Report,
			Excluded:           p.Excluded,
			Inventory:          p.Inventory,
			PreviousCheckpoint: previousCheckpoint(ctx, history, ws.Name, p.Target, log),
			Script:             string(p.Script),
		}
		data.Targets = append(data.Targets, pd)
		steps = append(steps, planSteps(cfg, driver.Options, p, pd.PreviousCheckpoint)...)
	}
	steps = append(steps, historyStep(cfg.HistoryConfig))

	plan := dryrun.BuildPlan(constants.ActNRMetrics, steps,
		fmt.Sprintf("Анализ %s: %d цел., checkpoint %s", ws.Name, len(targets), driver.Options.Checkpoint))

	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: constants.ActNRMetrics,
		Data:    data,
		DryRun:  true,
		Plan:    plan,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
	}
	return output.NewWriter(format).Write(os.Stdout, result)
}

func planSteps(cfg *config.Config, opts srcmon.Options, p *srcmon.Preview, previous string) []output.PlanStep {
	sm := cfg.SourceMonitorConfig
	exeSource := opts.ExecutableDir
	if exeSource == "" {
		exeSource = "распаковка из " + filepath.Join(sm.BundleDir, constants.SourceMonitorResourceDir)
	}
	exe := filepath.Join(opts.ExecutableDir, opts.Executable)

	scriptParams := map[string]any{
		"path":       p.ScriptPath,
		"excluded":   strings.Join(p.Excluded, ", "),
		"language":   opts.Language,
		"checkpoint": opts.Checkpoint,
	}
	if previous != "" {
		scriptParams["previous_checkpoint"] = previous
	}

	launcher := srcmon.Launcher{AttemptTimeout: opts.AttemptTimeout}
	return []output.PlanStep{
		{
			Operation:  "Поиск SourceMonitor [" + p.Target + "]",
			Parameters: map[string]any{"source": exeSource, "executable": opts.Executable},
		},
		{
			Operation:       "Удаление артефактов прошлого запуска [" + p.Target + "]",
			Parameters:      map[string]any{"report": p.Files.Report, "project_state": p.Files.ProjectState},
			ExpectedChanges: []string{"Файлы отчёта и состояния проекта будут удалены"},
		},
		{
			Operation:       "Запись командного файла [" + p.Target + "]",
			Parameters:      scriptParams,
			ExpectedChanges: []string{"Будет создан " + p.ScriptPath},
		},
		{
			Operation: "Запуск SourceMonitor [" + p.Target + "]",
			Parameters: map[string]any{
				"command":          fmt.Sprintf("%s /C %s", exe, p.ScriptPath),
				"timeout":          launcher.Budget(opts.Attempts).String(),
				"files":            p.Inventory.Included,
				"excluded_by_dir":  p.Inventory.ExcludedByDir,
				"excluded_by_glob": p.Inventory.ExcludedByGlob,
			},
			ExpectedChanges: []string{"Будут созданы " + p.Files.Report + " и " + p.Files.ProjectState},
		},
	}
}

func historyStep(hc *config.HistoryConfig) output.PlanStep {
	step := output.PlanStep{Operation: "Запись истории запусков", Parameters: map[string]any{}}
	if hc == nil || !hc.Enabled {
		step.Skipped = true
		step.SkipReason = "BR_HISTORY_ENABLED=false"
		return step
	}
	step.Parameters = map[string]any{"dsn": dryrun.MaskSecrets(hc.DSN), "table": hc.Table}
	step.ExpectedChanges = []string{"По строке на каждую цель в " + hc.Table}
	return step
}
