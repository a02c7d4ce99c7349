// Package metricshandler реализует команду nr-metrics: расчёт метрик
// исходного кода решения через SourceMonitor.
package metricshandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Kargones/apk-metrics/internal/adapter/mssql"
	"github.com/Kargones/apk-metrics/internal/command"
	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/entity/srcmon"
	"github.com/Kargones/apk-metrics/internal/entity/workspace"
	"github.com/Kargones/apk-metrics/internal/pkg/apperrors"
	"github.com/Kargones/apk-metrics/internal/pkg/dryrun"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/metrics"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
	"github.com/Kargones/apk-metrics/internal/pkg/progress"
	"github.com/Kargones/apk-metrics/internal/pkg/tracing"
)

// RegisterCmd регистрирует nr-metrics и устаревшее имя metrics.
// collector получает метрики исключений и запусков SourceMonitor.
func RegisterCmd(collector metrics.Collector) error {
	return command.RegisterWithAlias(&MetricsHandler{collector: collector}, constants.ActMetrics)
}

// TargetResult: итог анализа одной цели.
type TargetResult struct {
	*srcmon.RunReport
	State     string `json:"state"`
	ErrorCode string `json:"error_code,omitempty"`
}

// MetricsData: результат nr-metrics.
type MetricsData struct {
	Workspace  string         `json:"workspace"`
	Checkpoint string         `json:"checkpoint"`
	Mode       string         `json:"mode"`
	Targets    []TargetResult `json:"targets"`
}

// Failed возвращает число неуспешных целей.
func (d *MetricsData) Failed() int {
	n := 0
	for _, t := range d.Targets {
		if !t.Succeeded() {
			n++
		}
	}
	return n
}

func (d *MetricsData) writeText(w io.Writer) error {
	var sb strings.Builder
	mark := "✅"
	if d.Failed() > 0 {
		mark = "❌"
	}
	fmt.Fprintf(&sb, "%s Метрики %s (%s), checkpoint %s\n", mark, d.Workspace, d.Mode, d.Checkpoint)
	for _, t := range d.Targets {
		fmt.Fprintf(&sb, "  %s [%s] %s\n", t.Target, t.Kind, t.State)
		if t.Succeeded() {
			fmt.Fprintf(&sb, "    Отчёт: %s\n", t.ReportFile)
			fmt.Fprintf(&sb, "    Исключено каталогов: %d\n", len(t.Excluded))
			fmt.Fprintf(&sb, "    Время: %v\n", t.Duration.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(&sb, "    Ошибка [%s]: %s\n", t.ErrorCode, t.Error)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// MetricsHandler обрабатывает nr-metrics.
type MetricsHandler struct {
	collector metrics.Collector
	// history: клиент истории (mock в тестах). nil → mssql.NewClient.
	history mssql.Client
	// extractor: nil → BundleExtractor из конфигурации.
	extractor srcmon.ResourceExtractor
}

// Name возвращает имя команды.
func (h *MetricsHandler) Name() string {
	return constants.ActNRMetrics
}

// Description возвращает описание команды для help.
func (h *MetricsHandler) Description() string {
	return "Метрики исходного кода через SourceMonitor. " +
		"BR_METRICS_TARGET=project анализирует проекты по отдельности, BR_DRY_RUN=true выводит план"
}

// Execute анализирует решение или его проекты. В режиме project цели
// запускаются по очереди, ошибка одной цели не останавливает остальные.
func (h *MetricsHandler) Execute(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	traceID := tracing.TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = tracing.GenerateTraceID()
	}
	format := os.Getenv(constants.EnvOutputFormat)

	if cfg == nil || cfg.SourceMonitorConfig == nil {
		return h.writeError(format, traceID, start, nil,
			apperrors.NewAppError(apperrors.ErrConfigLoad, "конфигурация SourceMonitor не загружена", nil))
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.With("trace_id", traceID, "command", constants.ActNRMetrics)

	if cfg.WorkspaceFile == "" {
		return h.writeError(format, traceID, start, nil,
			apperrors.NewAppError(apperrors.ErrConfigValidate, "не указан файл описания решения (BR_WORKSPACE_FILE)", nil))
	}
	sm := cfg.SourceMonitorConfig

	ws, err := workspace.Load(cfg.WorkspaceFile, sm.TestProjectPattern)
	if err != nil {
		log.Error("Не удалось загрузить описание решения", "path", cfg.WorkspaceFile, "error", err.Error())
		return h.writeError(format, traceID, start, nil, err)
	}
	skip := workspace.ParseSkipList(cfg.SkippedProjects)
	log = log.With("workspace", ws.Name)

	opts, err := buildOptions(sm, ws)
	if err != nil {
		return h.writeError(format, traceID, start, nil, err)
	}
	targets, err := selectTargets(sm, ws, skip)
	if err != nil {
		return h.writeError(format, traceID, start, nil, err)
	}

	driver := &srcmon.Driver{
		Options:   opts,
		Extractor: h.resourceExtractor(sm, log),
		Logger:    log,
		Metrics:   h.metrics(),
	}

	if dryrun.IsDryRun() {
		return h.executeDryRun(ctx, cfg, driver, ws, targets, format, traceID, start, log)
	}

	log.Info("Запуск анализа", "mode", sm.Target, "targets", len(targets), "skipped", skip.Len())

	history := h.openHistory(ctx, cfg.HistoryConfig, log)
	defer closeHistory(history, log)

	data := &MetricsData{
		Workspace:  ws.Name,
		Checkpoint: opts.Checkpoint,
		Mode:       sm.Target,
		Targets:    make([]TargetResult, 0, len(targets)),
	}
	bar := progress.New(progress.Options{Total: int64(len(targets)), Logger: log, ShowETA: true})
	bar.Start("Анализ " + ws.Name)
	var errs []error
	for i, target := range targets {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}
		report, runErr := driver.Run(ctx, target)
		res := TargetResult{RunReport: report, State: string(report.State())}
		if runErr != nil {
			res.ErrorCode = apperrors.CodeOf(runErr, apperrors.ErrCommandExec)
			errs = append(errs, fmt.Errorf("%s: %w", target.Name(), runErr))
		}
		data.Targets = append(data.Targets, res)
		saveRun(ctx, history, runRecord(ws.Name, opts.Checkpoint, cfg.Actor, report, runErr), log)
		bar.Update(int64(i+1), target.Name())
	}
	bar.Finish()

	if len(errs) > 0 {
		return h.writeError(format, traceID, start, data, errors.Join(errs...))
	}

	log.Info("Анализ завершён", "targets", len(data.Targets), "duration", time.Since(start).String())
	if format != output.FormatJSON {
		return data.writeText(os.Stdout)
	}

	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: constants.ActNRMetrics,
		Data:    data,
		Summary: buildSummary(data),
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
	}
	return output.NewWriter(format).Write(os.Stdout, result)
}

func buildSummary(data *MetricsData) *output.SummaryInfo {
	s := output.NewSummaryInfo()
	s.AddMetric("Целей", fmt.Sprintf("%d", len(data.Targets)), "")
	excluded := 0
	for _, t := range data.Targets {
		excluded += len(t.Excluded)
		if t.Succeeded() && !t.ReportFound {
			s.AddWarning(fmt.Sprintf("%s: отчёт не найден после успешного запуска", t.Target))
		}
	}
	s.AddMetric("Исключено каталогов", fmt.Sprintf("%d", excluded), "")
	return s
}

// writeError выводит ошибку в формате BR_OUTPUT_FORMAT и возвращает её
// как *apperrors.AppError. data != nil означает, что цели запускались.
func (h *MetricsHandler) writeError(format, traceID string, start time.Time, data *MetricsData, err error) error {
	var appErr *apperrors.AppError
	switch {
	case data != nil:
		appErr = apperrors.NewAppError(firstFailedCode(data, apperrors.CodeOf(err, apperrors.ErrCommandExec)),
			fmt.Sprintf("анализ завершился ошибкой для %d из %d целей", data.Failed(), len(data.Targets)), err)
	case !errors.As(err, &appErr):
		appErr = apperrors.NewAppError(apperrors.CodeOf(err, apperrors.ErrCommandExec), err.Error(), err)
	}

	if format != output.FormatJSON {
		if data != nil {
			if writeErr := data.writeText(os.Stdout); writeErr != nil {
				return errors.Join(appErr, writeErr)
			}
			return appErr
		}
		fmt.Fprintf(os.Stdout, "Ошибка: %s\nКод: %s\n", err.Error(), appErr.Code) //nolint:errcheck // stdout
		return appErr
	}

	result := &output.Result{
		Status:  output.StatusError,
		Command: constants.ActNRMetrics,
		Error:   &output.ErrorInfo{Code: appErr.Code, Message: err.Error()},
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
	}
	if data != nil {
		result.Data = data
	}
	if writeErr := output.NewWriter(format).Write(os.Stdout, result); writeErr != nil {
		return errors.Join(appErr, writeErr)
	}
	return appErr
}

func firstFailedCode(data *MetricsData, fallback string) string {
	for _, t := range data.Targets {
		if t.ErrorCode != "" {
			return t.ErrorCode
		}
	}
	return fallback
}

func (h *MetricsHandler) resourceExtractor(sm *config.SourceMonitorConfig, log logging.Logger) srcmon.ResourceExtractor {
	if h.extractor != nil {
		return h.extractor
	}
	return &srcmon.BundleExtractor{BundleDir: sm.BundleDir, RuntimeDir: sm.RuntimeDir, Logger: log}
}

func (h *MetricsHandler) metrics() metrics.Collector {
	if h.collector == nil {
		return metrics.NewNopCollector()
	}
	return h.collector
}
