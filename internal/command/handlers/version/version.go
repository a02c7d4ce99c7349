// Package version реализует команду nr-version.
package version

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Kargones/apk-metrics/internal/command"
	"github.com/Kargones/apk-metrics/internal/config"
	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
	"github.com/Kargones/apk-metrics/internal/pkg/tracing"
)

// RegisterCmd регистрирует nr-version.
func RegisterCmd() error {
	return command.Register(&VersionHandler{})
}

// VersionData: данные о сборке.
type VersionData struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Commit    string `json:"commit"`
	// RollbackMapping: nr-команды и их старые имена для отката пайплайнов.
	RollbackMapping []RollbackEntry `json:"rollback_mapping"`
}

// RollbackEntry: nr-команда и её старое имя ("" если его нет).
type RollbackEntry struct {
	NRCommand   string `json:"nr_command"`
	LegacyAlias string `json:"legacy_alias"`
}

func (d *VersionData) writeText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "apk-metrics version %s\n  Go:     %s\n  Commit: %s\n", d.Version, d.GoVersion, d.Commit)
	if len(d.RollbackMapping) > 0 {
		sb.WriteString("\nRollback Mapping:\n")
		for _, entry := range d.RollbackMapping {
			alias := entry.LegacyAlias
			if alias == "" {
				alias = "(нет)"
			}
			fmt.Fprintf(&sb, "  %-20s → %s\n", entry.NRCommand, alias)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// buildVersionData подставляет "dev" и "unknown" вместо пустых значений.
func buildVersionData(version, commit string) *VersionData {
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	return &VersionData{
		Version:         version,
		GoVersion:       runtime.Version(),
		Commit:          commit,
		RollbackMapping: buildRollbackMapping(),
	}
}

func buildRollbackMapping() []RollbackEntry {
	commands := command.ListAllWithAliases()
	entries := make([]RollbackEntry, 0, len(commands))
	for _, cmd := range commands {
		if !strings.HasPrefix(cmd.Name, "nr-") {
			continue
		}
		entries = append(entries, RollbackEntry{NRCommand: cmd.Name, LegacyAlias: cmd.DeprecatedAlias})
	}
	return entries
}

// VersionHandler обрабатывает nr-version.
type VersionHandler struct{}

// Name возвращает имя команды.
func (h *VersionHandler) Name() string {
	return constants.ActNRVersion
}

// Description возвращает описание команды для help.
func (h *VersionHandler) Description() string {
	return "Вывод информации о версии приложения"
}

// Execute выводит версию. Текстовый формат компактный и без metadata,
// JSON формат оборачивается в output.Result.
func (h *VersionHandler) Execute(ctx context.Context, _ *config.Config) error {
	start := time.Now()
	data := buildVersionData(constants.Version, constants.PreCommitHash)

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
		Command: constants.ActNRVersion,
		Data:    data,
		Metadata: &output.Metadata{
			DurationMs: time.Since(start).Milliseconds(),
			TraceID:    traceID,
			APIVersion: constants.APIVersion,
		},
	}
	return output.NewWriter(format).Write(os.Stdout, result)
}
