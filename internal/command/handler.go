// Package command содержит интерфейс команды и реестр команд apk-metrics.
// Обработчики регистрируются явно из handlers.RegisterAll при старте.
package command

import (
	"context"

	"github.com/Kargones/apk-metrics/internal/config"
)

// Handler: команда, выбираемая по BR_COMMAND.
type Handler interface {
	// Name: имя в реестре, например "nr-metrics".
	Name() string
	// Description выводится в help.
	Description() string
	// Execute выполняет команду. Ошибка приводит к коду выхода 8.
	Execute(ctx context.Context, cfg *config.Config) error
}
