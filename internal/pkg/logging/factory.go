package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Форматы, уровни и приёмники логов.
const (
	FormatJSON = "json"
	FormatText = "text"

	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Значения по умолчанию. Используются также в config.getDefaultLoggingConfig.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/apk-metrics.log"
	DefaultMaxSize    = 100 // MB
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // дней
	DefaultCompress   = true
)

// Config содержит настройки логирования.
type Config struct {
	// Format: "json" или "text".
	Format string
	// Level: минимальный уровень (debug, info, warn, error).
	Level string
	// Output: "stderr" или "file".
	Output string
	// FilePath: путь к файлу логов при Output="file".
	FilePath string
	// MaxSize: размер файла в MB до ротации.
	MaxSize int
	// MaxBackups: количество хранимых архивов.
	MaxBackups int
	// MaxAge: срок хранения архивов в днях.
	MaxAge int
	// Compress: сжимать архивы в gzip.
	Compress bool
}

// DefaultConfig возвращает Config со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		FilePath:   DefaultFilePath,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}
}

// NewLogger создаёт Logger по конфигурации.
// Output="file" пишет через lumberjack с ротацией, иначе используется stderr.
func NewLogger(config Config) Logger {
	var w io.Writer
	switch config.Output {
	case OutputFile:
		w = newRotatingWriter(config)
	case OutputStderr, "":
		w = os.Stderr
	default:
		_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
			"WARNING: неизвестный logging output %q, используется stderr\n", config.Output)
		w = os.Stderr
	}
	return NewLoggerWithWriter(config, w)
}

// newRotatingWriter создаёт writer с ротацией. Каталог логов создаётся при необходимости.
// При пустом FilePath или ошибке создания каталога возвращается stderr.
func newRotatingWriter(config Config) io.Writer {
	if config.FilePath == "" {
		_, _ = os.Stderr.WriteString("WARNING: logging output=file, но filePath пуст, используется stderr\n") //nolint:errcheck // bootstrap stderr
		return os.Stderr
	}
	if dir := filepath.Dir(config.FilePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, //nolint:errcheck // bootstrap stderr
				"WARNING: не удалось создать каталог логов %q: %v, используется stderr\n", dir, err)
			return os.Stderr
		}
	}
	return &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// NewLoggerWithWriter создаёт Logger, пишущий в w. Используется в тестах.
func NewLoggerWithWriter(config Config, w io.Writer) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}
	var handler slog.Handler
	if config.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

// parseLevel переводит строковый уровень в slog.Level. Неизвестное значение → info.
func parseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
