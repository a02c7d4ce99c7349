// Package help реализует команду help: список команд и переменных окружения.
package help

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Kargones/apk-metrics/internal/command"
	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
	"github.com/Kargones/apk-metrics/internal/pkg/tracing"
)

// RegisterCmd регистрирует help.
func RegisterCmd() error {
	return command.Register(&Handler{})
}

// Data: содержимое справки.
type Data struct {
	Commands []CommandInfo `json:"commands"`
	Options  []OptionInfo  `json:"options"`
}

// CommandInfo описывает команду.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Deprecated  bool   `json:"deprecated,omitempty"`
	NewName     string `json:"new_name,omitempty"`
}

// OptionInfo описывает переменную окружения.
type OptionInfo struct {
	Env         string `json:"env"`
	Description string `json:"description"`
}

var options = []OptionInfo{
	{constants.EnvOutputFormat + "=json", "Машиночитаемый вывод"},
	{constants.EnvDryRun + "=true", "План запуска без удаления артефактов и без SourceMonitor"},
	{"BR_WORKSPACE_FILE", "YAML описание решения и его проектов"},
	{"BR_SKIPPED_PROJECTS", "Проекты через запятую, исключаемые из анализа"},
	{"BR_METRICS_TARGET", "solution (по умолчанию) или project"},
	{"BR_METRICS_PROJECT", "Один проект для режима project"},
	{"BR_SOURCEMONITOR_DIR", "Каталог SourceMonitor; пусто: распаковка из BR_SOURCEMONITOR_BUNDLE_DIR"},
	{"BR_ENV_FILE", "Путь к .env файлу"},
	{"BR_CONFIG_SYSTEM", "Путь к app.yaml"},
}

// Handler обрабатывает help.
type Handler struct{}

// Name возвращает имя команды.
func (h *Handler) Name() string {
	return constants.ActHelp
}

// Description возвращает описание команды.
func (h *Handler) Description() string {
	return "Вывод списка доступных команд"
}

// Execute выводит справку в формате BR_OUTPUT_FORMAT.
func (h *Handler) Execute(ctx context.Context, _ *config.Config) error {
	start := time.Now()
	data := buildData()

	format := os.Getenv(constants.EnvOutputFormat)
	if format != output.FormatJSON {
		return data.writeText(os.Stdout)
	}

	traceID := tracing.TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = tracing.GenerateTraceID()
	}
	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: constants.ActHelp,
		Data:    data,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
	}
	return output.NewWriter(format).Write(os.Stdout, result)
}

// buildData собирает команды из реестра. Старые имена идут отдельными
// строками с пометкой deprecated.
func buildData() *Data {
	data := &Data{Options: options}
	for _, info := range command.ListAllWithAliases() {
		data.Commands = append(data.Commands, CommandInfo{Name: info.Name, Description: info.Description})
		if info.DeprecatedAlias != "" {
			data.Commands = append(data.Commands, CommandInfo{
				Name:        info.DeprecatedAlias,
				Description: info.Description,
				Deprecated:  true,
				NewName:     info.Name,
			})
		}
	}
	sort.Slice(data.Commands, func(i, j int) bool {
		return data.Commands[i].Name < data.Commands[j].Name
	})
	return data
}

func (d *Data) writeText(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("apk-metrics: метрики исходного кода через SourceMonitor\n")

	width := 0
	for _, cmd := range d.Commands {
		width = max(width, len(cmd.Name))
	}
	sb.WriteString("\nКоманды:\n")
	for _, cmd := range d.Commands {
		desc := cmd.Description
		if cmd.Deprecated {
			desc = fmt.Sprintf("[deprecated → %s] %s", cmd.NewName, desc)
		}
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, cmd.Name, desc)
	}

	width = 0
	for _, opt := range d.Options {
		width = max(width, len(opt.Env))
	}
	sb.WriteString("\nОпции:\n")
	for _, opt := range d.Options {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, opt.Env, opt.Description)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
