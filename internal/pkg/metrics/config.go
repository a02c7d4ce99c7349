package metrics

import (
	"errors"
	"net/url"
	"time"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

var (
	// ErrPushgatewayURLRequired: не указан URL Pushgateway при включённых метриках.
	ErrPushgatewayURLRequired = errors.New("pushgateway URL is required when metrics enabled")
	// ErrPushgatewayURLInvalid: URL Pushgateway имеет невалидный формат.
	ErrPushgatewayURLInvalid = errors.New("pushgateway URL has invalid format")
	// ErrJobNameRequired: не указано имя job.
	ErrJobNameRequired = errors.New("job name is required")
	// ErrInvalidTimeout: таймаут не положителен.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

// Config содержит настройки отправки метрик.
type Config struct {
	// Enabled: включены ли метрики (по умолчанию false).
	Enabled bool
	// PushgatewayURL: например "http://pushgateway:9091".
	PushgatewayURL string
	// JobName: имя job для группировки метрик.
	JobName string
	// Timeout: таймаут HTTP запроса к Pushgateway.
	Timeout time.Duration
	// InstanceLabel: значение label instance. Пусто → hostname.
	InstanceLabel string
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		JobName: "apk-metrics",
		Timeout: 10 * time.Second,
	}
}

// Validate проверяет конфигурацию. Отключённые метрики всегда валидны.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.PushgatewayURL == "" {
		return ErrPushgatewayURLRequired
	}
	u, err := url.Parse(c.PushgatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPushgatewayURLInvalid
	}
	if c.JobName == "" {
		return ErrJobNameRequired
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// NewCollector создаёт Collector по конфигурации.
func NewCollector(config Config, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		return NewNopCollector(), nil
	}
	return NewPrometheusCollector(config, logger)
}
