package progress

import (
	"encoding/json"
	"time"
)

// JSONProgress пишет события JSON-lines в Output.
type JSONProgress struct {
	opts    Options
	encoder *json.Encoder
	start   time.Time
}

// NewJSONProgress создаёт JSONProgress.
func NewJSONProgress(opts Options) *JSONProgress {
	return &JSONProgress{opts: opts, encoder: json.NewEncoder(opts.Output)}
}

// Start пишет progress_start.
func (p *JSONProgress) Start(message string) {
	p.start = time.Now()
	p.emit(Event{Type: "progress_start", Total: p.opts.Total, Message: message})
}

// Update пишет progress. Каждая цель: отдельное событие, без throttling.
func (p *JSONProgress) Update(current int64, message string) {
	ev := Event{Type: "progress", Current: current, Total: p.opts.Total, Message: message}
	if p.opts.Total > 0 {
		pct := percent(current, p.opts.Total)
		ev.Percent = &pct
		if left := eta(p.start, current, p.opts.Total); left > 0 {
			secs := int64(left.Seconds())
			ev.ETASeconds = &secs
		}
	}
	p.emit(ev)
}

// Finish пишет progress_end.
func (p *JSONProgress) Finish() {
	p.emit(Event{Type: "progress_end", DurationMs: time.Since(p.start).Milliseconds()})
}

func (p *JSONProgress) emit(ev Event) {
	if err := p.encoder.Encode(ev); err != nil && p.opts.Logger != nil {
		p.opts.Logger.Debug("progress: ошибка записи события", "error", err.Error())
	}
}
