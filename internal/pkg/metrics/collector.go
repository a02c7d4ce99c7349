// Package metrics собирает метрики запусков и отправляет их в Prometheus Pushgateway.
//
// NewCollector выбирает реализацию по конфигурации: PrometheusCollector
// при включённых метриках, NopCollector иначе.
package metrics

import (
	"context"
	"time"
)

// Collector определяет интерфейс для сбора метрик.
type Collector interface {
	// RecordCommandStart записывает начало выполнения команды.
	RecordCommandStart(command, target string)

	// RecordCommandEnd записывает завершение команды с результатом.
	RecordCommandEnd(command, target string, duration time.Duration, success bool)

	// RecordExclusions записывает число исключённых из анализа каталогов.
	RecordExclusions(target string, count int)

	// RecordToolRun записывает результат запуска анализатора:
	// "completed", "failed", "timeout" или "not_found".
	RecordToolRun(target, outcome string)

	// Push отправляет метрики в Pushgateway.
	// Всегда возвращает nil: ошибка отправки логируется и не прерывает команду.
	Push(ctx context.Context) error
}

// NopCollector: no-op реализация Collector.
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

// RecordCommandStart ничего не делает.
func (c *NopCollector) RecordCommandStart(_, _ string) {}

// RecordCommandEnd ничего не делает.
func (c *NopCollector) RecordCommandEnd(_, _ string, _ time.Duration, _ bool) {}

// RecordExclusions ничего не делает.
func (c *NopCollector) RecordExclusions(_ string, _ int) {}

// RecordToolRun ничего не делает.
func (c *NopCollector) RecordToolRun(_, _ string) {}

// Push всегда возвращает nil.
func (c *NopCollector) Push(_ context.Context) error {
	return nil
}
