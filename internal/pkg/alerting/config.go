package alerting

import (
	"errors"
	"net/url"
	"time"
)

const (
	// DefaultRateLimitWindow: минимальный интервал между алертами одного кода.
	DefaultRateLimitWindow = 5 * time.Minute
	// DefaultWebhookTimeout: таймаут одного HTTP запроса.
	DefaultWebhookTimeout = 10 * time.Second
	// DefaultMaxRetries: повторы при сетевых ошибках и 5xx.
	DefaultMaxRetries = 3
)

var (
	// ErrWebhookURLRequired: webhook включён без URL.
	ErrWebhookURLRequired = errors.New("alerting: at least one url is required when webhook is enabled")
	// ErrWebhookURLInvalid: URL без scheme/host или не http(s).
	ErrWebhookURLInvalid = errors.New("alerting: webhook url must be http(s) with host")
	// ErrWebhookHeaderInvalid: заголовок содержит управляющие символы.
	ErrWebhookHeaderInvalid = errors.New("alerting: webhook header contains control characters")
)

// Config: настройки алертинга.
type Config struct {
	Enabled         bool
	RateLimitWindow time.Duration
	Webhook         WebhookConfig
}

// WebhookConfig: настройки webhook канала.
type WebhookConfig struct {
	URLs       []string
	Headers    map[string]string
	Timeout    time.Duration
	MaxRetries int
}

// Validate проверяет URL и заголовки. Выключенный алертинг всегда валиден.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Webhook.URLs) == 0 {
		return ErrWebhookURLRequired
	}
	for _, raw := range c.Webhook.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return ErrWebhookURLInvalid
		}
	}
	for key, value := range c.Webhook.Headers {
		if invalidHeader(key) || invalidHeader(value) {
			return ErrWebhookHeaderInvalid
		}
	}
	return nil
}

// invalidHeader: HTAB допустим, остальные управляющие символы нет (RFC 7230).
func invalidHeader(s string) bool {
	for _, r := range s {
		if r == '\t' {
			continue
		}
		if r <= 0x1f || r == 0x7f {
			return true
		}
	}
	return false
}
