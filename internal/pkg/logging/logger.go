// Package logging предоставляет интерфейс структурированного логирования
// и его реализации поверх log/slog.
package logging

// Logger определяет интерфейс структурированного логирования.
//
// Методы принимают сообщение и пары key-value:
//
//	logger.Info("SourceMonitor завершён", "target", name, "duration_ms", 1500)
//
// ВАЖНО: Logger пишет только в stderr или файл, никогда в stdout.
// stdout занят результатом команды (output.Writer).
type Logger interface {
	// Debug записывает сообщение уровня DEBUG.
	Debug(msg string, args ...any)
	// Info записывает сообщение уровня INFO.
	Info(msg string, args ...any)
	// Warn записывает сообщение уровня WARN (recoverable ситуации).
	Warn(msg string, args ...any)
	// Error записывает сообщение уровня ERROR.
	Error(msg string, args ...any)
	// With возвращает Logger с атрибутами, добавляемыми во все записи.
	With(args ...any) Logger
}

// NopLogger игнорирует все сообщения. Используется в тестах.
type NopLogger struct{}

// NewNopLogger создаёт Logger, который ничего не пишет.
func NewNopLogger() Logger {
	return &NopLogger{}
}

// Debug ничего не делает.
func (n *NopLogger) Debug(_ string, _ ...any) {}

// Info ничего не делает.
func (n *NopLogger) Info(_ string, _ ...any) {}

// Warn ничего не делает.
func (n *NopLogger) Warn(_ string, _ ...any) {}

// Error ничего не делает.
func (n *NopLogger) Error(_ string, _ ...any) {}

// With возвращает тот же NopLogger: атрибуты всё равно игнорируются.
func (n *NopLogger) With(_ ...any) Logger {
	return n
}
