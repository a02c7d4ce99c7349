package progress

import (
	"time"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// LogProgress пишет строку лога на каждое обновление. Для CI, где stderr
// не терминал и перерисовка полосы превращается в мусор.
type LogProgress struct {
	total int64
	log   logging.Logger
	start time.Time
}

// NewLogProgress создаёт LogProgress.
func NewLogProgress(opts Options) *LogProgress {
	return &LogProgress{total: opts.Total, log: opts.Logger}
}

// Start фиксирует время начала.
func (p *LogProgress) Start(message string) {
	p.start = time.Now()
	p.log.Info("Операция начата", "message", message, "total", p.total)
}

// Update логирует обработанную цель.
func (p *LogProgress) Update(current int64, message string) {
	p.log.Info("Прогресс операции",
		"current", current,
		"total", p.total,
		"percent", percent(current, p.total),
		"elapsed", FormatDuration(time.Since(p.start)),
		"message", message,
	)
}

// Finish логирует общую длительность.
func (p *LogProgress) Finish() {
	p.log.Info("Операция завершена", "duration", FormatDuration(time.Since(p.start)))
}
