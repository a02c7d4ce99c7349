package srcmon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/util/runner"
)

// ResolveExecutable возвращает абсолютный путь к исполняемому файлу
// SourceMonitor. Пустой dir означает распаковку поставки через extractor.
// Отсутствующий, не обычный или неисполняемый файл → *ToolNotFoundError.
func ResolveExecutable(ctx context.Context, dir, name string, extractor ResourceExtractor) (string, error) {
	if dir == "" {
		if extractor == nil {
			return "", &ToolNotFoundError{Path: name, Reason: "каталог не задан", Cause: ErrBundleNotConfigured}
		}
		extracted, err := extractor.Extract(ctx)
		if err != nil {
			return "", &ToolNotFoundError{Path: name, Reason: "распаковка поставки", Cause: err}
		}
		dir = extracted
	}

	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", &ToolNotFoundError{Path: filepath.Join(dir, name), Cause: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", &ToolNotFoundError{Path: path, Reason: "файл отсутствует", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return "", &ToolNotFoundError{Path: path, Reason: "не является файлом"}
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", &ToolNotFoundError{Path: path, Reason: "нет права на выполнение"}
	}
	return path, nil
}

// LaunchSpec описывает один запуск внешнего процесса.
type LaunchSpec struct {
	Executable string
	Args       []string
	// Label: метка запуска в логах и ошибках.
	Label string
	// Attempts: бюджет запуска в единицах AttemptTimeout. Меньше 1 → 1.
	Attempts int
	WorkDir  string
}

// LaunchResult: итог завершённого процесса.
type LaunchResult struct {
	ExitCode int
	Duration time.Duration
	Output   string
}

// Launcher запускает внешний процесс с ограничением времени
// Attempts × AttemptTimeout.
type Launcher struct {
	// AttemptTimeout <= 0 снимает ограничение времени.
	AttemptTimeout time.Duration
	// Encoding: кодировка консоли процесса (utf-8, cp1251, cp866).
	Encoding string
	Logger   logging.Logger
}

// Budget возвращает время, отведённое процессу.
func (l *Launcher) Budget(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(attempts) * l.AttemptTimeout
}

// Launch запускает процесс и ждёт его завершения. Ненулевой код выхода,
// ошибка запуска или истечение бюджета → *ExternalToolExecutionError.
func (l *Launcher) Launch(ctx context.Context, spec LaunchSpec) (*LaunchResult, error) {
	log := l.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.With("label", spec.Label)

	execCtx := ctx
	budget := l.Budget(spec.Attempts)
	if l.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	r := &runner.Runner{
		RunString: spec.Executable,
		Params:    append([]string(nil), spec.Args...),
		WorkDir:   spec.WorkDir,
		Encoding:  l.Encoding,
	}

	start := time.Now()
	out, runErr := r.RunCommand(execCtx, log)
	result := &LaunchResult{
		ExitCode: r.ExitCode,
		Duration: time.Since(start),
		Output:   runner.TrimOut(out),
	}

	if runErr != nil {
		cause := runErr
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			cause = fmt.Errorf("%w: бюджет %s исчерпан: %w", ErrLaunchTimeout, budget, runErr)
		}
		return result, &ExternalToolExecutionError{
			Label:    spec.Label,
			ExitCode: r.ExitCode,
			Output:   result.Output,
			Cause:    cause,
		}
	}

	log.Info("Внешний процесс завершён", "duration", result.Duration.String())
	return result, nil
}

// ErrLaunchTimeout: процесс остановлен по истечении бюджета времени.
var ErrLaunchTimeout = errors.New("превышено время выполнения")
