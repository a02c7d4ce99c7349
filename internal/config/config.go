// Package config загружает конфигурацию apk-metrics из переменных окружения
// BR_*, необязательного .env файла и необязательного app.yaml.
//
// Приоритет: переменные окружения > app.yaml > значения по умолчанию.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// InputParams: параметры запуска из окружения CI.
// INPUT_* выставляются Gitea/GitHub Actions и используются, если BR_* не заданы.
type InputParams struct {
	Command         string `env:"BR_COMMAND"`
	Actor           string `env:"BR_ACTOR"`
	ConfigSystem    string `env:"BR_CONFIG_SYSTEM"`
	WorkspaceFile   string `env:"BR_WORKSPACE_FILE"`
	SkippedProjects string `env:"BR_SKIPPED_PROJECTS"`

	GHACommand       string `env:"INPUT_COMMAND"`
	GHAActor         string `env:"INPUT_ACTOR"`
	GHAWorkspaceFile string `env:"INPUT_WORKSPACEFILE"`
	GHASkipped       string `env:"INPUT_SKIPPEDPROJECTS"`
}

// AppConfig: содержимое app.yaml.
type AppConfig struct {
	SourceMonitor SourceMonitorConfig `yaml:"sourcemonitor"`
	Logging       LoggingConfig       `yaml:"logging"`
	Prometheus    PrometheusConfig    `yaml:"prometheus"`
	Tracing       TracingConfig       `yaml:"tracing"`
	History       HistoryConfig       `yaml:"history"`
	Alerting      AlertingConfig      `yaml:"alerting"`
}

// Config: полная конфигурация приложения.
type Config struct {
	Command string
	Actor   string
	// WorkspaceFile: YAML описание решения и его проектов.
	WorkspaceFile string
	// SkippedProjects: список проектов через запятую, исключаемых из анализа.
	SkippedProjects string
	// ConfigSystem: путь к app.yaml.
	ConfigSystem string

	Logger    logging.Logger
	AppConfig *AppConfig

	SourceMonitorConfig *SourceMonitorConfig
	LoggingConfig       *LoggingConfig
	PrometheusConfig    *PrometheusConfig
	TracingConfig       *TracingConfig
	HistoryConfig       *HistoryConfig
	AlertingConfig      *AlertingConfig
}

// EnvFileVar: переменная с путём к .env файлу.
const EnvFileVar = "BR_ENV_FILE"

// ErrInvalidConfig оборачивает все ошибки валидации.
var ErrInvalidConfig = errors.New("невалидная конфигурация")

// MustLoad загружает конфигурацию. Ошибка означает, что команда не может
// быть выполнена (exit code 5).
func MustLoad() (*Config, error) {
	boot := logging.NewLogger(logging.DefaultConfig())

	if err := loadEnvFile(os.Getenv(EnvFileVar)); err != nil {
		return nil, err
	}

	var params InputParams
	if err := cleanenv.ReadEnv(&params); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}

	cfg := &Config{
		Command:         firstNonEmpty(params.Command, params.GHACommand),
		Actor:           firstNonEmpty(params.Actor, params.GHAActor),
		WorkspaceFile:   firstNonEmpty(params.WorkspaceFile, params.GHAWorkspaceFile),
		SkippedProjects: firstNonEmpty(params.SkippedProjects, params.GHASkipped),
		ConfigSystem:    params.ConfigSystem,
	}

	var appErr error
	if cfg.ConfigSystem != "" {
		cfg.AppConfig, appErr = loadAppConfig(cfg.ConfigSystem)
	}

	var err error
	if cfg.LoggingConfig, err = loadLoggingConfig(boot, cfg); err != nil {
		return nil, err
	}
	cfg.Logger = logging.NewLogger(cfg.LoggingConfig.ToLogging())
	l := cfg.Logger

	if appErr != nil {
		l.Warn("ошибка загрузки app.yaml, используются значения по умолчанию",
			"path", cfg.ConfigSystem,
			"error", appErr.Error(),
		)
	}

	if cfg.SourceMonitorConfig, err = loadSourceMonitorConfig(l, cfg); err != nil {
		return nil, err
	}
	if err = validateSourceMonitorConfig(cfg.SourceMonitorConfig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.PrometheusConfig = loadPrometheusConfig(l, cfg)
	cfg.TracingConfig = loadTracingConfig(l, cfg)
	cfg.AlertingConfig = loadAlertingConfig(l, cfg)

	if cfg.HistoryConfig, err = loadHistoryConfig(l, cfg); err != nil {
		return nil, err
	}
	if err = validateHistoryConfig(cfg.HistoryConfig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	l.Debug("конфигурация загружена",
		"command", cfg.Command,
		"workspace", cfg.WorkspaceFile,
		"app_config", cfg.ConfigSystem,
	)
	return cfg, nil
}

// loadEnvFile загружает .env файл. Уже выставленные переменные не перезаписываются.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("не удалось загрузить %s: %w", path, err)
	}
	return nil
}

// loadAppConfig читает app.yaml с диска.
func loadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // путь задаётся оператором CI
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения app.yaml: %w", err)
	}
	var appConfig AppConfig
	if err = yaml.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("ошибка парсинга app.yaml: %w", err)
	}
	return &appConfig, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
