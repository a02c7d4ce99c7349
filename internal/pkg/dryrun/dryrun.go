// Package dryrun определяет режим BR_DRY_RUN: команда строит план
// действий и ничего не запускает.
package dryrun

import (
	"os"
	"regexp"
	"strings"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/output"
)

// IsDryRun возвращает true при BR_DRY_RUN равном "true" (без учёта регистра) или "1".
func IsDryRun() bool {
	val := os.Getenv(constants.EnvDryRun)
	return strings.EqualFold(val, "true") || val == "1"
}

// BuildPlan собирает план. Шаги нумеруются по порядку, если Order не задан.
func BuildPlan(command string, steps []output.PlanStep, summary string) *output.DryRunPlan {
	for i := range steps {
		if steps[i].Order == 0 {
			steps[i].Order = i + 1
		}
	}
	return &output.DryRunPlan{
		Command:          command,
		Steps:            steps,
		Summary:          summary,
		ValidationPassed: true,
	}
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password=)([^;&]+)`),
	regexp.MustCompile(`(?i)(pwd=)([^;&]+)`),
	regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`),
}

// MaskSecrets скрывает пароли в строке подключения перед выводом в план.
//
//	"sqlserver://sa:secret@db:1433" → "sqlserver://sa:***@db:1433"
func MaskSecrets(s string) string {
	s = secretPatterns[0].ReplaceAllString(s, "${1}***")
	s = secretPatterns[1].ReplaceAllString(s, "${1}***")
	return secretPatterns[2].ReplaceAllString(s, "${1}***${3}")
}
