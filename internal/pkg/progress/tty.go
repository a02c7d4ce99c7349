package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// TTYProgress перерисовывает полосу в одной строке терминала.
type TTYProgress struct {
	mu       sync.Mutex
	opts     Options
	start    time.Time
	current  int64
	lastDraw time.Time
	message  string
}

// NewTTYProgress создаёт TTYProgress.
func NewTTYProgress(opts Options) *TTYProgress {
	return &TTYProgress{opts: opts}
}

// Start рисует пустую полосу.
func (p *TTYProgress) Start(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = time.Now()
	p.message = message
	p.current = 0
	p.draw()
}

// Update перерисовывает полосу не чаще ThrottleInterval.
func (p *TTYProgress) Update(current int64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	if message != "" {
		p.message = message
	}
	if p.opts.ThrottleInterval > 0 && time.Since(p.lastDraw) < p.opts.ThrottleInterval {
		return
	}
	p.draw()
}

// Finish рисует итоговое состояние и переводит строку.
func (p *TTYProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draw()
	fmt.Fprintln(p.opts.Output) //nolint:errcheck // terminal
}

func (p *TTYProgress) draw() {
	p.lastDraw = time.Now()
	pct := percent(p.current, p.opts.Total)
	line := fmt.Sprintf("\r%s %d%% (%d/%d)", renderBar(pct), pct, p.current, p.opts.Total)
	if p.opts.ShowETA {
		if left := eta(p.start, p.current, p.opts.Total); left > 0 {
			line += " | ETA: " + FormatDuration(left)
		}
	}
	if p.message != "" {
		line += " | " + p.message
	}
	fmt.Fprint(p.opts.Output, line+"\033[K") //nolint:errcheck // terminal
}

// renderBar: [=====>    ]; при 0% без стрелки.
func renderBar(pct int) string {
	filled := min(pct*barWidth/100, barWidth)
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range barWidth {
		switch {
		case i < filled:
			sb.WriteByte('=')
		case i == filled && filled > 0:
			sb.WriteByte('>')
		default:
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
