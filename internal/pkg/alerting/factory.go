package alerting

import "github.com/Kargones/apk-metrics/internal/pkg/logging"

// NewAlerter возвращает WebhookAlerter с общим RateLimiter или NopAlerter,
// если алертинг выключен.
func NewAlerter(config Config, logger logging.Logger) (Alerter, error) {
	if !config.Enabled {
		return NewNopAlerter(), nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	window := config.RateLimitWindow
	if window == 0 {
		window = DefaultRateLimitWindow
	}
	return NewWebhookAlerter(config.Webhook, NewRateLimiter(window), logger), nil
}
