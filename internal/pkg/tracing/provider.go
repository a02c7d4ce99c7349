package tracing

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// InstrumentationName: имя tracer-а для span-ов приложения.
const InstrumentationName = "github.com/Kargones/apk-metrics"

// Shutdown завершает TracerProvider с отправкой накопленных span-ов.
type Shutdown func(context.Context) error

// NewNopTracerProvider возвращает Shutdown, который ничего не делает.
func NewNopTracerProvider() Shutdown {
	return func(_ context.Context) error { return nil }
}

// NewTracerProvider создаёт OTLP HTTP exporter, BatchSpanProcessor и
// регистрирует TracerProvider глобально. При выключенном трейсинге
// возвращает nop Shutdown.
func NewTracerProvider(cfg Config, logger logging.Logger) (Shutdown, error) {
	if !cfg.Enabled {
		logger.Debug("трейсинг выключен, используется nop provider")
		return NewNopTracerProvider(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	// WithEndpoint принимает только host:port.
	endpointHost := cfg.Endpoint
	if u, parseErr := url.Parse(cfg.Endpoint); parseErr == nil && u.Host != "" {
		endpointHost = u.Host
	}
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpointHost),
		otlptracehttp.WithTimeout(cfg.Timeout),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRate)),
	)
	otel.SetTracerProvider(tp)

	logger.Info("OpenTelemetry трейсинг инициализирован",
		"endpoint", cfg.Endpoint,
		"service_name", cfg.ServiceName,
		"sampling_rate", cfg.SamplingRate,
	)
	return tp.Shutdown, nil
}

// Tracer возвращает tracer приложения из глобального провайдера.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// ContextWithOTelTraceID связывает внутренний trace ID с OTel: span-ы,
// созданные из возвращённого контекста, получают тот же trace ID.
// Невалидный traceIDHex оставляет контекст без изменений.
func ContextWithOTelTraceID(ctx context.Context, traceIDHex string) context.Context {
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return ctx
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

// newSampler применяет rate и к remote parent: ContextWithOTelTraceID
// всегда выставляет FlagsSampled.
func newSampler(rate float64) sdktrace.Sampler {
	return sdktrace.ParentBased(
		sdktrace.TraceIDRatioBased(rate),
		sdktrace.WithRemoteParentSampled(sdktrace.TraceIDRatioBased(rate)),
	)
}
