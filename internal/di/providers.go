package di

import (
	"context"
	"log/slog"
	"os"

	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/alerting"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/metrics"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
	"github.com/Kargones/apk-metrics/internal/pkg/tracing"
)

// ProvideLogger создаёт Logger по LoggingConfig. Пустые поля и nil Config
// заменяются значениями logging.DefaultConfig().
func ProvideLogger(cfg *config.Config) logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg == nil || cfg.LoggingConfig == nil {
		return logging.NewLogger(logCfg)
	}

	src := cfg.LoggingConfig.ToLogging()
	if src.Level != "" {
		logCfg.Level = src.Level
	}
	if src.Format != "" {
		logCfg.Format = src.Format
	}
	if src.Output != "" {
		logCfg.Output = src.Output
	}
	if src.FilePath != "" {
		logCfg.FilePath = src.FilePath
	}
	// BR_LOG_MAX_SIZE=0 и подобные игнорируются: для lumberjack это бессмысленно.
	if src.MaxSize > 0 {
		logCfg.MaxSize = src.MaxSize
	}
	if src.MaxBackups > 0 {
		logCfg.MaxBackups = src.MaxBackups
	}
	if src.MaxAge > 0 {
		logCfg.MaxAge = src.MaxAge
	}
	logCfg.Compress = src.Compress

	return logging.NewLogger(logCfg)
}

// ProvideOutputWriter создаёт Writer по BR_OUTPUT_FORMAT (json или text).
func ProvideOutputWriter() output.Writer {
	format := os.Getenv(constants.EnvOutputFormat)
	if format == "" {
		format = output.FormatText
	}
	return output.NewWriter(format)
}

// ProvideTraceID генерирует trace_id запуска: 32 hex символа.
func ProvideTraceID() string {
	return tracing.GenerateTraceID()
}

// ProvideAlerter создаёт Alerter по AlertingConfig. Выключенный алертинг
// и ошибка создания дают NopAlerter.
func ProvideAlerter(cfg *config.Config, logger logging.Logger) alerting.Alerter {
	if cfg == nil || cfg.AlertingConfig == nil {
		return alerting.NewNopAlerter()
	}

	alerter, err := alerting.NewAlerter(cfg.AlertingConfig.ToAlerting(), logger)
	if err != nil {
		logger.Error("ошибка создания Alerter, используется NopAlerter",
			slog.String("error", err.Error()),
		)
		return alerting.NewNopAlerter()
	}
	return alerter
}

// ProvideMetricsCollector создаёт Collector по PrometheusConfig.
// Отключённые метрики и ошибка создания дают NopCollector.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil || cfg.PrometheusConfig == nil {
		return metrics.NewNopCollector()
	}

	collector, err := metrics.NewCollector(cfg.PrometheusConfig.ToMetrics(), logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracerProvider инициализирует OTel TracerProvider и возвращает
// функцию завершения. Отключённый трейсинг даёт nop shutdown.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	if cfg == nil || cfg.TracingConfig == nil {
		return tracing.NewNopTracerProvider()
	}

	shutdown, err := tracing.NewTracerProvider(cfg.TracingConfig.ToTracing(constants.Version), logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}
