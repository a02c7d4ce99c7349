// Package tracing генерирует trace ID для корреляции логов и настраивает
// OpenTelemetry TracerProvider.
//
// Формат trace ID: 32 hex символа (16 байт), совместим с W3C Trace Context:
//
//	traceID := tracing.GenerateTraceID()
//	ctx = tracing.WithTraceID(ctx, traceID)
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var fallbackCounter atomic.Uint64

// GenerateTraceID генерирует trace ID через crypto/rand.
// При ошибке crypto/rand используется timestamp + счётчик.
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID всегда возвращает ровно 32 hex символа.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	return fmt.Sprintf("%016x%016x", uint64(time.Now().UnixNano()), counter)
}

type traceIDKey struct{}

// WithTraceID возвращает context с trace ID.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext извлекает trace ID. Пустая строка, если не установлен.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}
