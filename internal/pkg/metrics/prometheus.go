package metrics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/pkg/urlutil"
)

const namespace = "apk_metrics"

// maxLabelLength ограничивает длину значения label.
const maxLabelLength = 128

// PrometheusCollector реализует Collector поверх собственного prometheus.Registry.
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry
	instance string

	commandDuration *prometheus.HistogramVec
	commandTotal    *prometheus.CounterVec
	excludedDirs    *prometheus.GaugeVec
	toolRuns        *prometheus.CounterVec
}

// NewPrometheusCollector создаёт PrometheusCollector и регистрирует метрики:
//   - apk_metrics_command_duration_seconds (histogram)
//   - apk_metrics_command_total (counter, label status)
//   - apk_metrics_excluded_directories (gauge)
//   - apk_metrics_tool_runs_total (counter, label outcome)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	c := &PrometheusCollector{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		instance: instance,
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Duration of command execution in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 3600},
		}, []string{"command", "target", "status"}),
		commandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_total",
			Help:      "Total number of command executions",
		}, []string{"command", "target", "status"}),
		excludedDirs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "excluded_directories",
			Help:      "Number of directories excluded from the last analysis",
		}, []string{"target"}),
		toolRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_runs_total",
			Help:      "SourceMonitor runs by outcome",
		}, []string{"target", "outcome"}),
	}

	for _, col := range []prometheus.Collector{c.commandDuration, c.commandTotal, c.excludedDirs, c.toolRuns} {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}
	return c, nil
}

// RecordCommandStart только логирует: для CLI in-flight не отслеживается.
func (c *PrometheusCollector) RecordCommandStart(command, target string) {
	c.logger.Debug("metrics: command started", "command", command, "target", target)
}

// RecordCommandEnd обновляет histogram длительности и счётчик команд.
func (c *PrometheusCollector) RecordCommandEnd(command, target string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	command, target = sanitizeLabel(command), sanitizeLabel(target)

	c.commandDuration.WithLabelValues(command, target, status).Observe(duration.Seconds())
	c.commandTotal.WithLabelValues(command, target, status).Inc()

	c.logger.Debug("metrics: command ended",
		"command", command,
		"target", target,
		"duration_ms", duration.Milliseconds(),
		"success", success,
	)
}

// RecordExclusions устанавливает gauge исключённых каталогов.
func (c *PrometheusCollector) RecordExclusions(target string, count int) {
	c.excludedDirs.WithLabelValues(sanitizeLabel(target)).Set(float64(count))
}

// RecordToolRun увеличивает счётчик запусков анализатора.
func (c *PrometheusCollector) RecordToolRun(target, outcome string) {
	c.toolRuns.WithLabelValues(sanitizeLabel(target), sanitizeLabel(outcome)).Inc()
}

// Push отправляет метрики в Pushgateway. Ошибки логируются, возвращается nil.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: pushgateway URL not configured, skipping push")
		return nil
	}
	if ctx.Err() != nil {
		c.logger.Debug("metrics push отменён")
		return nil
	}

	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)
	if err := pusher.PushContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// Registry возвращает внутренний registry. Используется в тестах.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// sanitizeLabel заменяет контрольные символы на '_' и обрезает значение
// до maxLabelLength рун.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)
	if runes := []rune(clean); len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}
