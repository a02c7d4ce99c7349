// Package progress показывает ход анализа нескольких целей: полоса в
// терминале, строки лога в CI или JSON-события для автоматизации.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// Progress отображает ход обработки Total единиц работы.
type Progress interface {
	// Start начинает отображение.
	Start(message string)
	// Update сообщает, что обработано current единиц; message: текущая цель.
	Update(current int64, message string)
	// Finish завершает отображение.
	Finish()
}

// Options настраивает Progress.
type Options struct {
	Total int64
	// Output: куда рисовать полосу и JSON-события. nil → os.Stderr.
	Output io.Writer
	// Logger: для режима без терминала. nil → NopLogger.
	Logger  logging.Logger
	ShowETA bool
	// ThrottleInterval: минимальный интервал перерисовки полосы.
	ThrottleInterval time.Duration
}

// Event: JSON-событие потокового режима.
type Event struct {
	Type       string `json:"type"` // progress_start, progress, progress_end
	Current    int64  `json:"current,omitempty"`
	Total      int64  `json:"total,omitempty"`
	Percent    *int   `json:"percent,omitempty"`
	ETASeconds *int64 `json:"eta_seconds,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// IsTTY сообщает, является ли w терминалом.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// percent ограничен диапазоном 0..100.
func percent(current, total int64) int {
	if total <= 0 {
		return 0
	}
	return min(int(current*100/total), 100)
}

// eta оценивает оставшееся время по средней скорости. 0: оценки нет.
func eta(start time.Time, current, total int64) time.Duration {
	if current <= 0 || current >= total {
		return 0
	}
	elapsed := time.Since(start)
	return time.Duration(float64(elapsed) / float64(current) * float64(total-current))
}

// FormatDuration форматирует длительность: 45s, 5m 30s, 1h 7m 30s.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		return "0s"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		out := fmt.Sprintf("%dh", h)
		if m > 0 {
			out += fmt.Sprintf(" %dm", m)
		}
		if s > 0 {
			out += fmt.Sprintf(" %ds", s)
		}
		return out
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
