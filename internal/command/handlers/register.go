// Package handlers регистрирует все обработчики команд явно, без init().
package handlers

import (
	"github.com/Kargones/apk-metrics/internal/command/handlers/help"
	"github.com/Kargones/apk-metrics/internal/command/handlers/metricshandler"
	"github.com/Kargones/apk-metrics/internal/command/handlers/version"
	"github.com/Kargones/apk-metrics/internal/pkg/metrics"
)

// RegisterAll регистрирует обработчики в глобальном реестре.
// Вызывается один раз из main() до поиска команды.
func RegisterAll(collector metrics.Collector) error {
	if err := metricshandler.RegisterCmd(collector); err != nil {
		return err
	}
	if err := version.RegisterCmd(); err != nil {
		return err
	}
	return help.RegisterCmd()
}
