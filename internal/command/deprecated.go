package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Kargones/apk-metrics/internal/config"
)

// Deprecatable реализуется командами, зарегистрированными под старым именем.
type Deprecatable interface {
	IsDeprecated() bool
	NewName() string
}

var (
	_ Handler      = (*DeprecatedBridge)(nil)
	_ Deprecatable = (*DeprecatedBridge)(nil)
)

// DeprecatedBridge выполняет команду под старым именем (например "metrics")
// и при каждом вызове предупреждает в stderr, что нужно перейти на новое.
// stdout остаётся чистым для JSON результата.
type DeprecatedBridge struct {
	actual     Handler
	deprecated string
	newName    string
	// warnTo переопределяется в тестах.
	warnTo io.Writer
}

// Name возвращает старое имя.
func (b *DeprecatedBridge) Name() string {
	return b.deprecated
}

// Description возвращает описание основной команды.
func (b *DeprecatedBridge) Description() string {
	return b.actual.Description()
}

// IsDeprecated всегда true.
func (b *DeprecatedBridge) IsDeprecated() bool {
	return true
}

// NewName возвращает имя, которое следует использовать.
func (b *DeprecatedBridge) NewName() string {
	return b.newName
}

// Execute предупреждает о старом имени и делегирует основной команде.
// Отменённый контекст возвращается без предупреждения и без запуска.
func (b *DeprecatedBridge) Execute(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w := b.warnTo
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "WARNING: command '%s' is deprecated, use '%s' instead\n", b.deprecated, b.newName) //nolint:errcheck // stderr
	if cfg != nil && cfg.Logger != nil {
		cfg.Logger.Warn("Использовано устаревшее имя команды", "command", b.deprecated, "use", b.newName)
	}
	return b.actual.Execute(ctx, cfg)
}
