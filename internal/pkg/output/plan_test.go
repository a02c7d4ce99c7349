package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunPlan_WriteText(t *testing.T) {
	plan := &DryRunPlan{
		Command: "nr-metrics",
		Steps: []PlanStep{
			{
				Order:     1,
				Operation: "Формирование командного файла",
				Parameters: map[string]any{
					"script":     "target/metrics/sourcemonitor-command.xml",
					"exclusions": 2,
				},
				ExpectedChanges: []string{"создан файл sourcemonitor-command.xml"},
			},
			{Order: 2, Operation: "Распаковка SourceMonitor", Skipped: true, SkipReason: "исполняемый файл уже на месте"},
		},
		Summary:          "2 шага",
		ValidationPassed: true,
	}

	var buf bytes.Buffer
	require.NoError(t, plan.WriteText(&buf))

	want := "\n=== DRY RUN ===\n" +
		"Команда: nr-metrics\n" +
		"Валидация: ✅ Пройдена\n\n" +
		"План выполнения:\n" +
		"  1. Формирование командного файла\n" +
		"      exclusions: 2\n" +
		"      script: target/metrics/sourcemonitor-command.xml\n" +
		"      Ожидаемые изменения:\n" +
		"        - создан файл sourcemonitor-command.xml\n" +
		"  2. [SKIP] Распаковка SourceMonitor (исполняемый файл уже на месте)\n" +
		"\nИтого: 2 шага\n" +
		"=== END DRY RUN ===\n"
	assert.Equal(t, want, buf.String())
}

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"plain", "C:/src", "C:/src"},
		{"ansi", "\x1b[31mred\x1b[0m", "red"},
		{"newline", "a\nb\tc", "a b c"},
		{"control", "a\x00b\x7f", "ab"},
		{"number", 42, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeValue(tt.in))
		})
	}
}
