// Package main содержит точку входа apk-metrics, расчёт метрик исходного кода
// решения через SourceMonitor в CI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/apk-metrics/internal/command"
	"github.com/Kargones/apk-metrics/internal/command/handlers"
	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/di"
	"github.com/Kargones/apk-metrics/internal/pkg/alerting"
	"github.com/Kargones/apk-metrics/internal/pkg/apperrors"
	"github.com/Kargones/apk-metrics/internal/pkg/metrics"
	"github.com/Kargones/apk-metrics/internal/pkg/tracing"
)

// Коды выхода.
const (
	exitOK             = 0
	exitUnknownCommand = 2
	exitConfig         = 5
	exitCommandFailed  = 8
)

func main() {
	os.Exit(run())
}

// run возвращает exit code. os.Exit вызывается в main, чтобы отработали
// defer-ы: shutdown трейсинга и завершение root span.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.MustLoad()
	if err != nil || cfg == nil {
		fmt.Fprintf(os.Stderr, "Не удалось загрузить конфигурацию приложения: %v\n", err)
		return exitConfig
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось инициализировать приложение: %v\n", err)
		return exitConfig
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.TracerShutdown(shutdownCtx); err != nil {
			app.Logger.Error("ошибка завершения tracing",
				slog.String("error", err.Error()),
				slog.String("trace_id", app.TraceID),
				slog.String("command", cfg.Command),
			)
		}
	}()

	if err := handlers.RegisterAll(app.MetricsCollector); err != nil {
		app.Logger.Error("Ошибка регистрации команд", slog.String("error", err.Error()))
		return exitCommandFailed
	}
	return execute(ctx, app)
}

// execute находит команду в реестре и выполняет её. Пустая команда: help.
func execute(ctx context.Context, app *di.App) int {
	cfg := app.Config
	l := app.Logger
	l.Debug("Информация о сборке",
		slog.String("version", constants.Version),
		slog.String("commit_hash", constants.PreCommitHash),
	)

	if cfg.Command == "" {
		cfg.Command = constants.ActHelp
	}

	ctx = tracing.WithTraceID(ctx, app.TraceID)
	ctx = tracing.ContextWithOTelTraceID(ctx, app.TraceID)

	label := metricsTarget(cfg)
	ctx, span := tracing.Tracer().Start(ctx, cfg.Command,
		trace.WithAttributes(
			attribute.String("command", cfg.Command),
			attribute.String("target", label),
			attribute.String("trace_id", app.TraceID),
		),
	)
	defer span.End()

	handler, ok := command.Get(cfg.Command)
	if !ok {
		l.Error("неизвестная команда",
			slog.String("BR_COMMAND", cfg.Command),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		return exitUnknownCommand
	}

	app.MetricsCollector.RecordCommandStart(cfg.Command, label)
	start := time.Now()

	execErr := handler.Execute(ctx, cfg)
	recordMetrics(ctx, app.MetricsCollector, cfg.Command, label, start, execErr == nil)

	if execErr != nil {
		span.RecordError(execErr)
		l.Error("Ошибка выполнения команды",
			slog.String("command", cfg.Command),
			slog.String("error", execErr.Error()),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		alert := alerting.Alert{
			ErrorCode: apperrors.CodeOf(execErr, apperrors.ErrCommandExec),
			Message:   execErr.Error(),
			TraceID:   app.TraceID,
			Timestamp: time.Now(),
			Command:   cfg.Command,
			Target:    label,
			Severity:  alerting.SeverityCritical,
		}
		if err := app.Alerter.Send(ctx, alert); err != nil {
			l.Warn("Не удалось отправить алерт",
				slog.String("error", err.Error()),
				slog.String("error_code", alert.ErrorCode),
				slog.String("trace_id", app.TraceID),
			)
		}
		return exitCommandFailed
	}
	return exitOK
}

// recordMetrics фиксирует завершение команды и отправляет метрики.
func recordMetrics(ctx context.Context, collector metrics.Collector, cmd, target string, start time.Time, success bool) {
	collector.RecordCommandEnd(cmd, target, time.Since(start), success)
	_ = collector.Push(ctx) // ошибки push логируются внутри
}

// metricsTarget возвращает значение label target, проект или режим анализа.
func metricsTarget(cfg *config.Config) string {
	if cfg.SourceMonitorConfig == nil {
		return ""
	}
	if cfg.SourceMonitorConfig.Project != "" {
		return cfg.SourceMonitorConfig.Project
	}
	return cfg.SourceMonitorConfig.Target
}
