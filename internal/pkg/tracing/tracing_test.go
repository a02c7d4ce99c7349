package tracing

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

var hex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestGenerateTraceID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateTraceID()
		assert.Regexp(t, hex32, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100)
	assert.Regexp(t, hex32, fallbackTraceID())
}

func TestTraceIDContext(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
	assert.Empty(t, TraceIDFromContext(nil)) //nolint:staticcheck // проверка nil
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Enabled:      true,
		Endpoint:     "http://jaeger:4318",
		ServiceName:  "apk-metrics",
		Timeout:      time.Second,
		SamplingRate: 0.5,
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"disabled", func(c *Config) { *c = Config{} }, nil},
		{"no endpoint", func(c *Config) { c.Endpoint = "" }, ErrTracingEndpointRequired},
		{"endpoint without host", func(c *Config) { c.Endpoint = "jaeger" }, ErrTracingEndpointInvalidFormat},
		{"no service", func(c *Config) { c.ServiceName = "" }, ErrTracingServiceNameRequired},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrTracingTimeoutInvalid},
		{"rate above one", func(c *Config) { c.SamplingRate = 1.5 }, ErrTracingSamplingRateInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	shutdown, err := NewTracerProvider(DefaultConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider_InvalidConfig(t *testing.T) {
	_, err := NewTracerProvider(Config{Enabled: true}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrTracingEndpointRequired)
}

// Тест меняет глобальный TracerProvider, поэтому без t.Parallel().
func TestContextWithOTelTraceID_SpanInheritsTraceID(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(newSampler(1.0)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	id := GenerateTraceID()
	ctx := ContextWithOTelTraceID(context.Background(), id)
	_, span := Tracer().Start(ctx, "nr-metrics")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, id, spans[0].SpanContext.TraceID().String())
}

func TestContextWithOTelTraceID_InvalidHexKeepsContext(t *testing.T) {
	ctx := ContextWithOTelTraceID(context.Background(), "not-hex")
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}

func TestNewSampler_ZeroRateDropsRemoteSampled(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter), sdktrace.WithSampler(newSampler(0)))

	ctx := ContextWithOTelTraceID(context.Background(), GenerateTraceID())
	_, span := tp.Tracer("test").Start(ctx, "op")
	span.End()

	assert.Empty(t, exporter.GetSpans())
}
