package srcmon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/metrics"
	"github.com/Kargones/apk-metrics/internal/pkg/tracing"
)

// State: состояние запуска анализа.
type State string

// Состояния запуска: PREPARED → SCRIPT_WRITTEN → LAUNCHED → {COMPLETED | FAILED}.
const (
	StatePrepared      State = "PREPARED"
	StateScriptWritten State = "SCRIPT_WRITTEN"
	StateLaunched      State = "LAUNCHED"
	StateCompleted     State = "COMPLETED"
	StateFailed        State = "FAILED"
)

// Исходы запуска анализатора для метрик.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
	OutcomeNotFound  = "not_found"
	OutcomeAborted   = "aborted"
)

// RunReport: итог запуска анализа одной цели.
type RunReport struct {
	Target string `json:"target"`
	Kind   string `json:"kind"`
	// States: пройденные состояния в порядке перехода.
	States      []State       `json:"states"`
	Executable  string        `json:"executable,omitempty"`
	ScriptPath  string        `json:"script_path,omitempty"`
	Files       ReportFiles   `json:"-"`
	ReportFile  string        `json:"report_file,omitempty"`
	Excluded    []string      `json:"excluded"`
	ExitCode    int           `json:"exit_code"`
	ReportFound bool          `json:"report_found"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"duration_ms"`
	Error       string        `json:"error,omitempty"`
}

// State возвращает текущее состояние.
func (r *RunReport) State() State {
	if len(r.States) == 0 {
		return ""
	}
	return r.States[len(r.States)-1]
}

// Succeeded сообщает, завершился ли запуск успешно.
func (r *RunReport) Succeeded() bool {
	return r.State() == StateCompleted
}

func (r *RunReport) transition(s State) {
	r.States = append(r.States, s)
}

// Driver выполняет анализ цели: поиск SourceMonitor, очистка артефактов,
// исключения, командный файл, запуск и проверка отчёта.
//
// Driver не синхронизирует запуски: одновременно может выполняться
// не более одного запуска на один каталог отчётов.
type Driver struct {
	Options   Options
	Extractor ResourceExtractor
	Logger    logging.Logger
	Metrics   metrics.Collector
}

// Run выполняет анализ target. Ошибка: одна из типизированных ошибок
// пакета; RunReport возвращается всегда.
func (d *Driver) Run(ctx context.Context, target AnalysisTarget) (*RunReport, error) {
	log := d.logger().With("target", target.Name(), "kind", target.Kind())
	collector := d.collector()

	ctx, span := tracing.Tracer().Start(ctx, "srcmon."+target.Kind(),
		trace.WithAttributes(
			attribute.String("srcmon.target", target.Name()),
			attribute.String("srcmon.checkpoint", d.Options.Checkpoint),
		),
	)
	defer span.End()

	report := &RunReport{
		Target:    target.Name(),
		Kind:      target.Kind(),
		Excluded:  []string{},
		ExitCode:  -1,
		StartedAt: time.Now(),
	}
	report.transition(StatePrepared)

	fail := func(err error, outcome string) (*RunReport, error) {
		report.transition(StateFailed)
		report.finish()
		report.Error = err.Error()
		collector.RecordToolRun(target.Name(), outcome)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Анализ завершился ошибкой", "state", string(StateFailed), "error", err.Error())
		return report, err
	}

	exe, err := ResolveExecutable(ctx, d.Options.ExecutableDir, d.Options.Executable, d.Extractor)
	if err != nil {
		return fail(err, OutcomeNotFound)
	}
	report.Executable = exe

	reportDir := target.ReportDir(d.Options)
	report.Files = ReportPaths(reportDir, d.Options.ReportFileName)
	report.ReportFile = report.Files.Report
	if err := Reconcile(log, report.Files.All()...); err != nil {
		return fail(err, OutcomeAborted)
	}

	report.Excluded = target.ResolveExclusions(d.Options, log)
	collector.RecordExclusions(target.Name(), len(report.Excluded))
	span.SetAttributes(attribute.Int("srcmon.excluded", len(report.Excluded)))

	report.ScriptPath = filepath.Join(reportDir, constants.CommandScriptFileName)
	script := target.BuildScript(d.Options, report.Files, report.Excluded)
	if err := script.WriteFile(report.ScriptPath); err != nil {
		return fail(err, OutcomeAborted)
	}
	report.transition(StateScriptWritten)
	log.Debug("Командный файл записан", "path", report.ScriptPath, "excluded", len(report.Excluded))

	launcher := &Launcher{
		AttemptTimeout: d.Options.AttemptTimeout,
		Encoding:       d.Options.ConsoleEncoding,
		Logger:         log,
	}
	log.Info("Запуск SourceMonitor", "executable", exe, "checkpoint", d.Options.Checkpoint)
	report.transition(StateLaunched)
	res, err := launcher.Launch(ctx, LaunchSpec{
		Executable: exe,
		Args:       []string{"/C", report.ScriptPath},
		Label:      constants.MetricsLabel,
		Attempts:   d.Options.Attempts,
		WorkDir:    reportDir,
	})
	if res != nil {
		report.ExitCode = res.ExitCode
	}
	if err != nil {
		outcome := OutcomeFailed
		if errors.Is(err, ErrLaunchTimeout) {
			outcome = OutcomeTimeout
		}
		return fail(err, outcome)
	}

	if _, statErr := os.Stat(report.Files.Report); statErr == nil {
		report.ReportFound = true
	} else {
		log.Warn("SourceMonitor завершился успешно, но отчёт не найден", "report", report.Files.Report)
	}

	report.transition(StateCompleted)
	report.finish()
	collector.RecordToolRun(target.Name(), OutcomeCompleted)
	span.SetStatus(codes.Ok, "")
	log.Info("Метрики сформированы", "report", report.Files.Report, "duration", report.Duration.String())
	return report, nil
}

func (r *RunReport) finish() {
	r.Duration = time.Since(r.StartedAt)
	r.DurationMs = r.Duration.Milliseconds()
}

func (d *Driver) logger() logging.Logger {
	if d.Logger == nil {
		return logging.NewNopLogger()
	}
	return d.Logger
}

func (d *Driver) collector() metrics.Collector {
	if d.Metrics == nil {
		return metrics.NewNopCollector()
	}
	return d.Metrics
}
