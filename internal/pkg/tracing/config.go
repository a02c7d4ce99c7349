package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Ошибки валидации конфигурации трейсинга.
var (
	ErrTracingEndpointRequired      = errors.New("tracing: endpoint обязателен когда tracing включён")
	ErrTracingEndpointInvalidFormat = errors.New("tracing: endpoint должен быть валидным URL с host (например http://jaeger:4318)")
	ErrTracingServiceNameRequired   = errors.New("tracing: service name обязателен")
	ErrTracingTimeoutInvalid        = errors.New("tracing: timeout должен быть положительным")
	ErrTracingSamplingRateInvalid   = errors.New("tracing: sampling rate должен быть от 0.0 до 1.0")
)

// Config содержит настройки TracerProvider.
type Config struct {
	Enabled bool
	// Endpoint: URL OTLP HTTP endpoint, например "http://jaeger:4318".
	Endpoint    string
	ServiceName string
	Version     string
	Environment string
	// Insecure: HTTP вместо HTTPS.
	Insecure bool
	// Timeout: таймаут экспорта.
	Timeout time.Duration
	// SamplingRate: доля сэмплируемых трейсов, от 0.0 до 1.0.
	SamplingRate float64
}

// Validate проверяет конфигурацию. Выключенный трейсинг всегда валиден.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return ErrTracingEndpointRequired
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Host == "" {
		return ErrTracingEndpointInvalidFormat
	}
	if c.ServiceName == "" {
		return ErrTracingServiceNameRequired
	}
	if c.Timeout <= 0 {
		return ErrTracingTimeoutInvalid
	}
	if c.SamplingRate < 0.0 || c.SamplingRate > 1.0 {
		return fmt.Errorf("%w, получено: %g", ErrTracingSamplingRateInvalid, c.SamplingRate)
	}
	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (трейсинг выключен).
func DefaultConfig() Config {
	return Config{
		ServiceName:  "apk-metrics",
		Environment:  "production",
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}
