package alerting

import (
	"sync"
	"time"
)

// RateLimiter пропускает не больше одного алерта на код ошибки за окно.
// Состояние живёт в памяти процесса: в project режиме одна команда
// не шлёт по алерту на каждую упавшую цель.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	sent   map[string]time.Time
	now    func() time.Time
}

// NewRateLimiter создаёт RateLimiter с окном window.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{
		window: window,
		sent:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow отмечает код отправленным и возвращает true, если окно для него истекло.
func (r *RateLimiter) Allow(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if last, ok := r.sent[code]; ok && now.Sub(last) < r.window {
		return false
	}
	r.sent[code] = now
	return true
}
