package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/metrics"
	"github.com/Kargones/apk-metrics/internal/pkg/tracing"
	"github.com/Kargones/apk-metrics/internal/pkg/urlutil"
)

// PrometheusConfig: отправка метрик запусков в Pushgateway.
type PrometheusConfig struct {
	Enabled        bool          `yaml:"enabled" env:"BR_PROMETHEUS_ENABLED" env-default:"false"`
	PushgatewayURL string        `yaml:"pushgatewayUrl" env:"BR_PROMETHEUS_PUSHGATEWAY_URL"`
	JobName        string        `yaml:"jobName" env:"BR_PROMETHEUS_JOB_NAME" env-default:"apk-metrics"`
	Timeout        time.Duration `yaml:"timeout" env:"BR_PROMETHEUS_TIMEOUT" env-default:"10s"`
	InstanceLabel  string        `yaml:"instanceLabel" env:"BR_PROMETHEUS_INSTANCE"`
}

// ToMetrics переводит секцию в metrics.Config.
func (c *PrometheusConfig) ToMetrics() metrics.Config {
	return metrics.Config{
		Enabled:        c.Enabled,
		PushgatewayURL: c.PushgatewayURL,
		JobName:        c.JobName,
		Timeout:        c.Timeout,
		InstanceLabel:  c.InstanceLabel,
	}
}

// TracingConfig: экспорт OpenTelemetry span-ов.
type TracingConfig struct {
	Enabled      bool          `yaml:"enabled" env:"BR_TRACING_ENABLED" env-default:"false"`
	Endpoint     string        `yaml:"endpoint" env:"BR_TRACING_ENDPOINT"`
	ServiceName  string        `yaml:"serviceName" env:"BR_TRACING_SERVICE_NAME" env-default:"apk-metrics"`
	Environment  string        `yaml:"environment" env:"BR_TRACING_ENVIRONMENT" env-default:"production"`
	Insecure     bool          `yaml:"insecure" env:"BR_TRACING_INSECURE" env-default:"false"`
	Timeout      time.Duration `yaml:"timeout" env:"BR_TRACING_TIMEOUT" env-default:"5s"`
	SamplingRate float64       `yaml:"samplingRate" env:"BR_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// ToTracing переводит секцию в tracing.Config.
func (c *TracingConfig) ToTracing(version string) tracing.Config {
	return tracing.Config{
		Enabled:      c.Enabled,
		Endpoint:     c.Endpoint,
		ServiceName:  c.ServiceName,
		Version:      version,
		Environment:  c.Environment,
		Insecure:     c.Insecure,
		Timeout:      c.Timeout,
		SamplingRate: c.SamplingRate,
	}
}

func getDefaultPrometheusConfig() *PrometheusConfig {
	d := metrics.DefaultConfig()
	return &PrometheusConfig{JobName: d.JobName, Timeout: d.Timeout}
}

func getDefaultTracingConfig() *TracingConfig {
	d := tracing.DefaultConfig()
	return &TracingConfig{
		ServiceName:  d.ServiceName,
		Environment:  d.Environment,
		Timeout:      d.Timeout,
		SamplingRate: d.SamplingRate,
	}
}

// loadPrometheusConfig загружает секцию и отключает метрики при невалидных значениях:
// сбой метрик не должен останавливать анализ.
func loadPrometheusConfig(l logging.Logger, cfg *Config) *PrometheusConfig {
	promConfig := getDefaultPrometheusConfig()
	if cfg.AppConfig != nil && (cfg.AppConfig.Prometheus.Enabled || cfg.AppConfig.Prometheus.PushgatewayURL != "") {
		promConfig = &cfg.AppConfig.Prometheus
	}
	if err := cleanenv.ReadEnv(promConfig); err != nil {
		l.Warn("Ошибка загрузки Prometheus конфигурации из переменных окружения", "error", err.Error())
		return getDefaultPrometheusConfig()
	}
	if promConfig.Enabled {
		mc := promConfig.ToMetrics()
		if err := mc.Validate(); err != nil {
			l.Warn("невалидная конфигурация метрик, метрики отключены", "error", err.Error())
			promConfig.Enabled = false
		}
	}
	l.Debug("Prometheus конфигурация загружена",
		"enabled", promConfig.Enabled,
		"pushgateway_url", urlutil.MaskURL(promConfig.PushgatewayURL),
	)
	return promConfig
}

// loadTracingConfig загружает секцию; невалидная конфигурация отключает трейсинг.
func loadTracingConfig(l logging.Logger, cfg *Config) *TracingConfig {
	tracingConfig := getDefaultTracingConfig()
	if cfg.AppConfig != nil && (cfg.AppConfig.Tracing.Enabled || cfg.AppConfig.Tracing.Endpoint != "") {
		tracingConfig = &cfg.AppConfig.Tracing
	}
	if err := cleanenv.ReadEnv(tracingConfig); err != nil {
		l.Warn("Ошибка загрузки Tracing конфигурации из переменных окружения", "error", err.Error())
		return getDefaultTracingConfig()
	}
	if tracingConfig.Enabled {
		tc := tracingConfig.ToTracing("")
		if err := tc.Validate(); err != nil {
			l.Warn("невалидная конфигурация трейсинга, трейсинг отключён", "error", err.Error())
			tracingConfig.Enabled = false
		}
	}
	return tracingConfig
}
