package di

import (
	"context"

	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/pkg/alerting"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/metrics"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
)

// App содержит зависимости одного запуска. Создаётся InitializeApp.
//
// Новая зависимость: поле здесь, провайдер в providers.go, запись в
// ProviderSet (wire.go), затем go generate ./internal/di/...
type App struct {
	Config *config.Config

	// Logger: по LoggingConfig.
	Logger logging.Logger

	// OutputWriter: по BR_OUTPUT_FORMAT.
	OutputWriter output.Writer

	TraceID string

	// Alerter сообщает о неуспешных командах. При BR_ALERTING_ENABLED=false NopAlerter.
	Alerter alerting.Alerter

	// MetricsCollector отправляет метрики в Pushgateway.
	// При BR_PROMETHEUS_ENABLED=false это NopCollector.
	MetricsCollector metrics.Collector

	// TracerShutdown отправляет буферизированные span-ы. Без трейсинга nop.
	TracerShutdown func(context.Context) error
}
