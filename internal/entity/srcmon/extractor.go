package srcmon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// ErrBundleNotConfigured: каталог SourceMonitor не задан и поставки нет.
var ErrBundleNotConfigured = errors.New("не задан ни каталог SourceMonitor, ни каталог поставки")

// ResourceExtractor материализует поставляемый SourceMonitor
// и возвращает каталог с исполняемым файлом.
type ResourceExtractor interface {
	Extract(ctx context.Context) (string, error)
}

// BundleExtractor копирует <BundleDir>/metrics/** в
// <RuntimeDir>/sourcemonitor-runtime/SourceMonitor. Копирование выполняется
// один раз на экземпляр, все цели одного запуска используют одну распаковку.
type BundleExtractor struct {
	BundleDir string
	// RuntimeDir пусто → os.TempDir().
	RuntimeDir string
	Logger     logging.Logger

	mu        sync.Mutex
	extracted string
}

// Extract копирует поставку поверх распаковки прошлых запусков и запоминает
// результат. Повторные вызовы возвращают тот же каталог без копирования.
func (b *BundleExtractor) Extract(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.extracted != "" {
		return b.extracted, nil
	}

	if b.BundleDir == "" {
		return "", ErrBundleNotConfigured
	}
	log := b.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	src := filepath.Join(b.BundleDir, constants.SourceMonitorResourceDir)
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("каталог поставки SourceMonitor: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("каталог поставки SourceMonitor %s не является каталогом", src)
	}

	runtimeDir := b.RuntimeDir
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}
	dst := filepath.Join(runtimeDir, constants.SourceMonitorExportPath, constants.SourceMonitorFolder)
	if err := os.MkdirAll(dst, constants.DirPermStandard); err != nil {
		return "", fmt.Errorf("не удалось создать каталог распаковки %s: %w", dst, err)
	}

	copied := 0
	err = doublestar.GlobWalk(os.DirFS(src), "**", func(rel string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyFile(filepath.Join(src, filepath.FromSlash(rel)), filepath.Join(dst, filepath.FromSlash(rel))); err != nil {
			return err
		}
		copied++
		return nil
	}, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return "", fmt.Errorf("распаковка SourceMonitor: %w", err)
	}

	log.Info("SourceMonitor распакован из поставки", "source", src, "target", dst, "files", copied)
	b.extracted = dst
	return dst, nil
}

func copyFile(from, to string) error {
	info, err := os.Stat(from)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(to), constants.DirPermStandard); err != nil {
		return err
	}

	in, err := os.Open(from) //nolint:gosec // путь внутри каталога поставки
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // файл только читается

	out, err := os.OpenFile(to, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm()) //nolint:gosec // путь внутри каталога распаковки
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close() //nolint:errcheck // уже есть ошибка копирования
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile не меняет права существующего файла.
	return os.Chmod(to, info.Mode().Perm())
}
