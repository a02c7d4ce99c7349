package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAlerter(t *testing.T, cfg WebhookConfig, limiter *RateLimiter) (*WebhookAlerter, *testLogger) {
	t.Helper()
	log := &testLogger{}
	a := NewWebhookAlerter(cfg, limiter, log)
	a.backoff = time.Millisecond
	return a, log
}

func failedRun() Alert {
	return Alert{
		ErrorCode: "METRICS.TOOL_EXECUTION_FAILED",
		Message:   "SourceMonitor exited with code 3",
		TraceID:   "0123456789abcdef0123456789abcdef",
		Timestamp: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
		Command:   "nr-metrics",
		Target:    "solution",
		Severity:  SeverityCritical,
	}
}

func TestWebhookAlerter_Send(t *testing.T) {
	var got WebhookPayload
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a, log := newTestAlerter(t, WebhookConfig{URLs: []string{srv.URL}, Headers: map[string]string{"X-Token": "secret"}}, nil)

	require.NoError(t, a.Send(context.Background(), failedRun()))

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "METRICS.TOOL_EXECUTION_FAILED", got.ErrorCode)
	assert.Equal(t, "CRITICAL", got.Severity)
	assert.Equal(t, "apk-metrics", got.Source)
	assert.Equal(t, "solution", got.Target)
	assert.Len(t, log.infoMsgs, 1)
}

func TestWebhookAlerter_Retry(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		wantHits int32
		wantErrs int
	}{
		{name: "5xx then success", statuses: []int{502, 503, 200}, wantHits: 3, wantErrs: 0},
		{name: "4xx is not retried", statuses: []int{400}, wantHits: 1, wantErrs: 1},
		{name: "retries exhausted", statuses: []int{500, 500, 500}, wantHits: 3, wantErrs: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := hits.Add(1)
				w.WriteHeader(tt.statuses[min(int(n), len(tt.statuses))-1])
			}))
			defer srv.Close()

			a, log := newTestAlerter(t, WebhookConfig{URLs: []string{srv.URL}, MaxRetries: 2}, nil)

			assert.NoError(t, a.Send(context.Background(), failedRun()), "ошибки доставки не возвращаются")
			assert.Equal(t, tt.wantHits, hits.Load())
			assert.Len(t, log.errorMsgs, tt.wantErrs)
		})
	}
}

func TestWebhookAlerter_RateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	a, _ := newTestAlerter(t, WebhookConfig{URLs: []string{srv.URL}}, NewRateLimiter(time.Hour))

	for range 3 {
		require.NoError(t, a.Send(context.Background(), failedRun()))
	}
	other := failedRun()
	other.ErrorCode = "METRICS.TOOL_NOT_FOUND"
	require.NoError(t, a.Send(context.Background(), other))

	assert.Equal(t, int32(2), hits.Load())
}

func TestWebhookAlerter_CancelledContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	defer srv.Close()

	a, _ := newTestAlerter(t, WebhookConfig{URLs: []string{srv.URL}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, a.Send(ctx, failedRun()))
	assert.Zero(t, hits.Load())
}

func TestRateLimiter_Window(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiter(time.Minute)
	r.now = func() time.Time { return now }

	assert.True(t, r.Allow("A"))
	assert.False(t, r.Allow("A"))
	assert.True(t, r.Allow("B"))

	now = now.Add(time.Minute)
	assert.True(t, r.Allow("A"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "disabled", cfg: Config{}, wantErr: nil},
		{name: "valid", cfg: Config{Enabled: true, Webhook: WebhookConfig{URLs: []string{"https://hooks.local/ci"}}}},
		{name: "no urls", cfg: Config{Enabled: true}, wantErr: ErrWebhookURLRequired},
		{name: "ftp", cfg: Config{Enabled: true, Webhook: WebhookConfig{URLs: []string{"ftp://hooks.local"}}}, wantErr: ErrWebhookURLInvalid},
		{name: "no host", cfg: Config{Enabled: true, Webhook: WebhookConfig{URLs: []string{"https:///x"}}}, wantErr: ErrWebhookURLInvalid},
		{
			name:    "header injection",
			cfg:     Config{Enabled: true, Webhook: WebhookConfig{URLs: []string{"https://h"}, Headers: map[string]string{"X": "a\r\nB: c"}}},
			wantErr: ErrWebhookHeaderInvalid,
		},
		{
			name: "tab allowed",
			cfg:  Config{Enabled: true, Webhook: WebhookConfig{URLs: []string{"https://h"}, Headers: map[string]string{"X": "a\tb"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewAlerter(t *testing.T) {
	a, err := NewAlerter(Config{}, &testLogger{})
	require.NoError(t, err)
	assert.IsType(t, &NopAlerter{}, a)

	a, err = NewAlerter(Config{Enabled: true, Webhook: WebhookConfig{URLs: []string{"https://hooks.local/ci"}}}, &testLogger{})
	require.NoError(t, err)
	require.IsType(t, &WebhookAlerter{}, a)
	assert.NotNil(t, a.(*WebhookAlerter).rateLimiter)

	_, err = NewAlerter(Config{Enabled: true}, &testLogger{})
	assert.ErrorIs(t, err, ErrWebhookURLRequired)
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "INFO", SeverityInfo.String())
	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
	assert.Equal(t, "UNKNOWN", Severity(42).String())
}
