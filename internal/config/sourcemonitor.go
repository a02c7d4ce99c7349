package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
	"github.com/Kargones/apk-metrics/internal/util/runner"
)

// SourceMonitorConfig: настройки анализатора и анализа.
type SourceMonitorConfig struct {
	// ExecutableDir: каталог с SourceMonitor.exe. Пусто → распаковка из BundleDir.
	ExecutableDir string `yaml:"executableDir" env:"BR_SOURCEMONITOR_DIR"`
	Executable    string `yaml:"executable" env:"BR_SOURCEMONITOR_EXECUTABLE" env-default:"SourceMonitor.exe"`
	// BundleDir содержит подкаталог metrics/ с поставкой SourceMonitor.
	BundleDir string `yaml:"bundleDir" env:"BR_SOURCEMONITOR_BUNDLE_DIR"`
	// RuntimeDir: куда распаковывается поставка. Пусто → системный temp.
	RuntimeDir string `yaml:"runtimeDir" env:"BR_SOURCEMONITOR_RUNTIME_DIR"`

	ExcludedExtensions []string `yaml:"excludedExtensions" env:"BR_METRICS_EXCLUDED_EXTENSIONS" env-separator:"," env-default:"*.Designer.cs"`
	ReportFileName     string   `yaml:"reportFileName" env:"BR_METRICS_REPORT_FILENAME" env-default:"metrics-report.xml"`
	// SourceDir: корень анализа. Пусто → baseDir из описания решения.
	SourceDir string `yaml:"sourceDir" env:"BR_METRICS_SOURCE_DIR"`
	// ReportDir: каталог отчётов. Пусто → <baseDir>/target/metrics.
	ReportDir string `yaml:"reportDir" env:"BR_METRICS_REPORT_DIR"`
	// Checkpoint: имя checkpoint. Пусто → версия решения.
	Checkpoint string `yaml:"checkpoint" env:"BR_METRICS_CHECKPOINT"`
	Language   string `yaml:"language" env:"BR_METRICS_LANGUAGE" env-default:"C#"`

	// Attempts умножает AttemptTimeout: процесс получает Attempts × AttemptTimeout.
	Attempts       int           `yaml:"attempts" env:"BR_METRICS_ATTEMPTS" env-default:"1"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout" env:"BR_METRICS_ATTEMPT_TIMEOUT" env-default:"10m"`

	// Target: "solution" или "project".
	Target string `yaml:"target" env:"BR_METRICS_TARGET" env-default:"solution"`
	// Project ограничивает режим project одним проектом.
	Project            string `yaml:"project" env:"BR_METRICS_PROJECT"`
	TestProjectPattern string `yaml:"testProjectPattern" env:"BR_METRICS_TEST_PROJECT_PATTERN" env-default:"*.Tests"`
	ConsoleEncoding    string `yaml:"consoleEncoding" env:"BR_METRICS_CONSOLE_ENCODING" env-default:"utf-8"`
}

// Timeout возвращает бюджет времени на один запуск анализатора.
func (c *SourceMonitorConfig) Timeout() time.Duration {
	return time.Duration(c.Attempts) * c.AttemptTimeout
}

func getDefaultSourceMonitorConfig() *SourceMonitorConfig {
	return &SourceMonitorConfig{
		Executable:         constants.SourceMonitorExecutable,
		ExcludedExtensions: []string{constants.DefaultExcludedExtension},
		ReportFileName:     constants.MetricsReportFileName,
		Language:           constants.DefaultLanguage,
		Attempts:           constants.DefaultAttempts,
		AttemptTimeout:     10 * time.Minute,
		Target:             constants.TargetSolution,
		TestProjectPattern: constants.DefaultTestProjectPattern,
		ConsoleEncoding:    "utf-8",
	}
}

func loadSourceMonitorConfig(l logging.Logger, cfg *Config) (*SourceMonitorConfig, error) {
	smConfig := getDefaultSourceMonitorConfig()
	source := "defaults"
	if cfg.AppConfig != nil {
		// Незаполненные поля секции получают env-default.
		smConfig = &cfg.AppConfig.SourceMonitor
		source = "app.yaml"
	}
	if err := cleanenv.ReadEnv(smConfig); err != nil {
		return nil, fmt.Errorf("ошибка чтения BR_SOURCEMONITOR_*/BR_METRICS_*: %w", err)
	}
	smConfig.ExcludedExtensions = trimNonEmpty(smConfig.ExcludedExtensions)

	l.Debug("SourceMonitor конфигурация загружена",
		"source", source,
		"executable_dir", smConfig.ExecutableDir,
		"target", smConfig.Target,
		"attempts", smConfig.Attempts,
		"attempt_timeout", smConfig.AttemptTimeout.String(),
	)
	return smConfig, nil
}

// validateSourceMonitorConfig проверяет значения, ошибка в которых
// обнаружилась бы только после запуска анализатора.
func validateSourceMonitorConfig(c *SourceMonitorConfig) error {
	if c.Executable == "" {
		return fmt.Errorf("sourcemonitor: executable обязателен")
	}
	if c.ReportFileName == "" || strings.ContainsAny(c.ReportFileName, `/\`) {
		return fmt.Errorf("sourcemonitor: reportFileName должен быть именем файла, получено %q", c.ReportFileName)
	}
	if c.Language == "" {
		return fmt.Errorf("sourcemonitor: language обязателен")
	}
	if c.Attempts < 1 {
		return fmt.Errorf("sourcemonitor: attempts должен быть >= 1, получено %d", c.Attempts)
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("sourcemonitor: attemptTimeout должен быть положительным")
	}
	switch c.Target {
	case constants.TargetSolution, constants.TargetProject:
	default:
		return fmt.Errorf("sourcemonitor: target должен быть %q или %q, получено %q",
			constants.TargetSolution, constants.TargetProject, c.Target)
	}
	for _, ext := range c.ExcludedExtensions {
		if !doublestar.ValidatePattern(ext) {
			return fmt.Errorf("sourcemonitor: невалидный шаблон исключения %q", ext)
		}
	}
	if c.TestProjectPattern != "" && !doublestar.ValidatePattern(c.TestProjectPattern) {
		return fmt.Errorf("sourcemonitor: невалидный testProjectPattern %q", c.TestProjectPattern)
	}
	if _, err := runner.LookupEncoding(c.ConsoleEncoding); err != nil {
		return fmt.Errorf("sourcemonitor: %w", err)
	}
	return nil
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
