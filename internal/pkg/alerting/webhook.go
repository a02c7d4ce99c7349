package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/urlutil"
)

const (
	maxResponseBodySize = 1024
	maxBackoff          = 4 * time.Second
	userAgent           = "apk-metrics/1.0"
)

// WebhookPayload: JSON тело запроса.
type WebhookPayload struct {
	ErrorCode string    `json:"error_code"`
	Message   string    `json:"message"`
	TraceID   string    `json:"trace_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Target    string    `json:"target,omitempty"`
	Severity  string    `json:"severity"`
	Source    string    `json:"source"`
	Hostname  string    `json:"hostname,omitempty"`
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// WebhookAlerter отправляет алерт POST-запросом на каждый URL.
type WebhookAlerter struct {
	config      WebhookConfig
	rateLimiter *RateLimiter
	logger      logging.Logger
	httpClient  HTTPClient
	hostname    string
	// backoff: первая пауза между повторами, удваивается до maxBackoff.
	backoff time.Duration
}

// NewWebhookAlerter создаёт WebhookAlerter. rateLimiter может быть nil.
func NewWebhookAlerter(config WebhookConfig, rateLimiter *RateLimiter, logger logging.Logger) *WebhookAlerter {
	if config.Timeout == 0 {
		config.Timeout = DefaultWebhookTimeout
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &WebhookAlerter{
		config:      config,
		rateLimiter: rateLimiter,
		logger:      logger,
		httpClient:  &http.Client{Timeout: config.Timeout},
		hostname:    hostname,
		backoff:     time.Second,
	}
}

// SetHTTPClient подменяет HTTP клиент.
func (w *WebhookAlerter) SetHTTPClient(client HTTPClient) {
	w.httpClient = client
}

// Send отправляет алерт на все URL. Ошибки логируются, результат всегда nil.
func (w *WebhookAlerter) Send(ctx context.Context, alert Alert) error {
	if w.rateLimiter != nil && !w.rateLimiter.Allow(alert.ErrorCode) {
		w.logger.Debug("алерт подавлен rate limiter", "error_code", alert.ErrorCode)
		return nil
	}

	payload := WebhookPayload{
		ErrorCode: alert.ErrorCode,
		Message:   alert.Message,
		TraceID:   alert.TraceID,
		Timestamp: alert.Timestamp,
		Command:   alert.Command,
		Target:    alert.Target,
		Severity:  alert.Severity.String(),
		Source:    "apk-metrics",
		Hostname:  w.hostname,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		w.logger.Error("ошибка сериализации алерта", "error", err.Error())
		return nil
	}

	delivered := 0
	for _, url := range w.config.URLs {
		if ctx.Err() != nil {
			return nil
		}
		if err := w.sendWithRetry(ctx, url, body); err != nil {
			w.logger.Error("ошибка отправки webhook алерта",
				"error", err.Error(),
				"url", urlutil.MaskURL(url),
				"error_code", alert.ErrorCode,
			)
			continue
		}
		delivered++
	}

	if delivered == 0 && len(w.config.URLs) > 0 {
		w.logger.Warn("webhook алерт не доставлен ни на один URL", "error_code", alert.ErrorCode)
		return nil
	}
	w.logger.Info("webhook алерт отправлен",
		"error_code", alert.ErrorCode,
		"severity", alert.Severity.String(),
		"urls_success", delivered,
		"urls_total", len(w.config.URLs),
	)
	return nil
}

// sendWithRetry повторяет сетевые ошибки и 5xx. 4xx означает ошибку
// конфигурации и не повторяется.
func (w *WebhookAlerter) sendWithRetry(ctx context.Context, url string, body []byte) error {
	backoff := w.backoff
	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			w.logger.Debug("webhook retry", "attempt", attempt, "error", lastErr.Error())
		}

		lastErr = w.sendRequest(ctx, url, body)
		if lastErr == nil {
			return nil
		}
		var httpErr *httpError
		if errors.As(lastErr, &httpErr) && httpErr.StatusCode < 500 {
			return lastErr
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", w.config.MaxRetries+1, lastErr)
}

func (w *WebhookAlerter) sendRequest(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, value := range w.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // тело уже прочитано

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	return &httpError{StatusCode: resp.StatusCode, Body: string(data)}
}
