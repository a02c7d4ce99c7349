//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/apk-metrics/internal/config"
)

//go:generate wire

// ProviderSet объединяет провайдеры приложения.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideOutputWriter,
	ProvideTraceID,
	ProvideAlerter,
	ProvideMetricsCollector,
	ProvideTracerProvider,
	wire.Struct(new(App), "*"),
)

// InitializeApp собирает App из Config, загруженного config.MustLoad().
// Реализация генерируется в wire_gen.go.
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
