package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/apk-metrics/internal/pkg/alerting"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// AlertingConfig: webhook алерты о неуспешных командах.
type AlertingConfig struct {
	Enabled         bool          `yaml:"enabled" env:"BR_ALERTING_ENABLED" env-default:"false"`
	RateLimitWindow time.Duration `yaml:"rateLimitWindow" env:"BR_ALERTING_RATE_LIMIT_WINDOW" env-default:"5m"`
	WebhookURLs     []string      `yaml:"webhookUrls" env:"BR_ALERTING_WEBHOOK_URLS" env-separator:","`
	// WebhookHeaders: "Name:value,Name2:value2".
	WebhookHeaders map[string]string `yaml:"webhookHeaders" env:"BR_ALERTING_WEBHOOK_HEADERS"`
	WebhookTimeout time.Duration     `yaml:"webhookTimeout" env:"BR_ALERTING_WEBHOOK_TIMEOUT" env-default:"10s"`
	MaxRetries     int               `yaml:"maxRetries" env:"BR_ALERTING_MAX_RETRIES" env-default:"3"`
}

// ToAlerting переводит секцию в alerting.Config.
func (c *AlertingConfig) ToAlerting() alerting.Config {
	return alerting.Config{
		Enabled:         c.Enabled,
		RateLimitWindow: c.RateLimitWindow,
		Webhook: alerting.WebhookConfig{
			URLs:       c.WebhookURLs,
			Headers:    c.WebhookHeaders,
			Timeout:    c.WebhookTimeout,
			MaxRetries: c.MaxRetries,
		},
	}
}

func getDefaultAlertingConfig() *AlertingConfig {
	return &AlertingConfig{
		RateLimitWindow: alerting.DefaultRateLimitWindow,
		WebhookTimeout:  alerting.DefaultWebhookTimeout,
		MaxRetries:      alerting.DefaultMaxRetries,
	}
}

// loadAlertingConfig загружает секцию; невалидная конфигурация отключает
// алертинг с предупреждением.
func loadAlertingConfig(l logging.Logger, cfg *Config) *AlertingConfig {
	alertingConfig := getDefaultAlertingConfig()
	if cfg.AppConfig != nil && (cfg.AppConfig.Alerting.Enabled || len(cfg.AppConfig.Alerting.WebhookURLs) > 0) {
		alertingConfig = &cfg.AppConfig.Alerting
	}
	if err := cleanenv.ReadEnv(alertingConfig); err != nil {
		l.Warn("Ошибка загрузки Alerting конфигурации из переменных окружения", "error", err.Error())
		return getDefaultAlertingConfig()
	}
	if alertingConfig.Enabled {
		ac := alertingConfig.ToAlerting()
		if err := ac.Validate(); err != nil {
			l.Warn("невалидная конфигурация алертинга, алертинг отключён", "error", err.Error())
			alertingConfig.Enabled = false
		}
	}
	return alertingConfig
}
