// Package runner запускает внешние процессы и собирает их консольный вывод.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

const maxConsoleOut = 2048

// DefaultWaitDelay: сколько ждать закрытия pipe после завершения процесса.
const DefaultWaitDelay = 2 * time.Second

// ErrEmptyExecutable возвращается при пустом RunString.
var ErrEmptyExecutable = errors.New("executable path is empty")

// Runner описывает один запуск внешнего процесса.
type Runner struct {
	RunString string
	Params    []string
	WorkDir   string
	// Env дополняет окружение текущего процесса (KEY=VALUE).
	Env []string
	// Encoding: кодировка консоли процесса (utf-8, cp1251, cp866).
	// Пусто означает utf-8.
	Encoding string
	// WaitDelay ограничивает ожидание pipe после kill. 0 → DefaultWaitDelay.
	WaitDelay time.Duration

	// ConsoleOut: объединённый stdout и stderr после декодирования.
	ConsoleOut []byte
	// ExitCode: код завершения, -1 если процесс не завершился сам.
	ExitCode int
}

// ClearParams очищает параметры команды.
func (r *Runner) ClearParams() {
	r.Params = []string{}
}

// validateParams проверяет исполняемый файл. Параметры передаются процессу
// напрямую, без shell, поэтому "&", ";" и "|" в путях допустимы.
func (r *Runner) validateParams() error {
	if r.RunString == "" {
		return ErrEmptyExecutable
	}
	return nil
}

// RunCommand запускает процесс и ждёт завершения или отмены ctx.
// Возвращает декодированный консольный вывод. Ненулевой код выхода
// возвращается как *exec.ExitError, код доступен в r.ExitCode.
func (r *Runner) RunCommand(ctx context.Context, l logging.Logger) ([]byte, error) {
	r.ExitCode = -1
	r.ConsoleOut = nil

	l.Info("Параметры запуска",
		"Исполняемый файл", r.RunString,
		"WorkDir", r.WorkDir,
		"Параметры", fmt.Sprint(r.Params),
	)

	if err := r.validateParams(); err != nil {
		return nil, err
	}
	enc, err := LookupEncoding(r.Encoding)
	if err != nil {
		return nil, err
	}

	// #nosec G204 - exec без shell, параметры не интерпретируются
	cmd := exec.CommandContext(ctx, r.RunString, r.Params...)
	cmd.Dir = r.WorkDir
	if len(r.Env) > 0 {
		cmd.Env = appendEnviron(r.Env...)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	raw, runErr := cmd.CombinedOutput()
	if cmd.ProcessState != nil {
		r.ExitCode = cmd.ProcessState.ExitCode()
	}

	r.ConsoleOut = raw
	if decoded, decErr := enc.NewDecoder().Bytes(raw); decErr == nil {
		r.ConsoleOut = decoded
	} else {
		l.Warn("не удалось декодировать вывод консоли", "encoding", r.Encoding, "error", decErr.Error())
	}

	if runErr != nil {
		l.Error("Runner",
			"Ошибка при запуске", runErr.Error(),
			"Исполняемый файл", r.RunString,
			"Код выхода", r.ExitCode,
			"Вывод", TrimOut(r.ConsoleOut),
		)
	} else {
		l.Debug("Runner", "Вывод консоли", TrimOut(r.ConsoleOut))
	}

	r.ClearParams()
	return r.ConsoleOut, runErr
}

// LookupEncoding возвращает кодировку по имени WHATWG (utf-8, cp1251, cp866, ibm866...).
// Пустое имя означает utf-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("неизвестная кодировка консоли %q: %w", name, err)
	}
	return enc, nil
}

func appendEnviron(kv ...string) []string {
	env := os.Environ()
	for _, newVar := range kv {
		key, _, ok := strings.Cut(newVar, "=")
		if !ok {
			continue
		}
		replaced := false
		for i, v := range env {
			if strings.HasPrefix(v, key+"=") {
				env[i] = newVar
				replaced = true
				break
			}
		}
		if !replaced {
			env = append(env, newVar)
		}
	}
	return env
}

// TrimOut обрезает длинный вывод, оставляя начало и конец.
// Границы разреза сдвигаются к началу руны, вывод остаётся валидным UTF-8.
func TrimOut(b []byte) string {
	if len(b) < maxConsoleOut {
		return string(b)
	}
	head := 1020
	for head > 0 && !utf8.RuneStart(b[head]) {
		head--
	}
	tail := len(b) - 1020
	for tail < len(b) && !utf8.RuneStart(b[tail]) {
		tail++
	}
	return string(b[:head]) + "\n********\n" + string(b[tail:])
}
