// Package output форматирует результаты команд в JSON или текст.
// Результат пишется в stdout, логи в stderr.
package output

import (
	"io"
	"strings"
)

// Возможные значения Result.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Поддерживаемые форматы вывода (BR_OUTPUT_FORMAT).
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Result: структурированный результат выполнения команды.
type Result struct {
	Status  string `json:"status"`
	Command string `json:"command"`
	// Data: payload конкретной команды.
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Metadata *Metadata  `json:"metadata,omitempty"`
	// DryRun: результат является планом, а не выполнением.
	DryRun bool        `json:"dry_run,omitempty"`
	Plan   *DryRunPlan `json:"plan,omitempty"`
	// Summary сериализуется в metadata.summary через JSONWriter.
	Summary *SummaryInfo `json:"-"`
}

// ErrorInfo: машиночитаемый код и сообщение ошибки.
// Message не должен содержать секретов.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata содержит метаданные выполнения.
type Metadata struct {
	DurationMs int64        `json:"duration_ms"`
	TraceID    string       `json:"trace_id,omitempty"`
	APIVersion string       `json:"api_version"`
	Summary    *SummaryInfo `json:"summary,omitempty"`
}

// Writer форматирует Result и пишет его в w.
type Writer interface {
	Write(w io.Writer, result *Result) error
}

// NewWriter возвращает Writer для формата (без учёта регистра).
// Неизвестный формат → TextWriter.
func NewWriter(format string) Writer {
	if strings.EqualFold(format, FormatJSON) {
		return NewJSONWriter()
	}
	return NewTextWriter()
}
