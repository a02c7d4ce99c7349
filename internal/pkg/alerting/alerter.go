// Package alerting отправляет алерты о неуспешных командах во внешние
// системы через HTTP webhook с ограничением частоты.
package alerting

import (
	"context"
	"net/http"
	"time"
)

// Severity: уровень критичности алерта.
type Severity int

const (
	// SeverityInfo: информационный алерт.
	SeverityInfo Severity = iota
	// SeverityWarning: предупреждение.
	SeverityWarning
	// SeverityCritical: команда завершилась ошибкой.
	SeverityCritical
)

// String возвращает строковое представление Severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alert: данные одного алерта.
type Alert struct {
	// ErrorCode: код ошибки, ключ rate limiting.
	ErrorCode string
	Message   string
	TraceID   string
	Timestamp time.Time
	Command   string
	// Target: режим анализа или проект.
	Target   string
	Severity Severity
}

// Alerter отправляет алерты. Send всегда возвращает nil: ошибки доставки
// логируются и не меняют exit code команды.
type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// HTTPClient: подмножество *http.Client, подменяется в тестах.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NopAlerter ничего не отправляет.
type NopAlerter struct{}

// NewNopAlerter создаёт NopAlerter.
func NewNopAlerter() Alerter {
	return &NopAlerter{}
}

// Send ничего не делает.
func (n *NopAlerter) Send(_ context.Context, _ Alert) error {
	return nil
}
