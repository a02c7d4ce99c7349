package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"BR_LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"BR_LOG_FORMAT" env-default:"text"`
	Output     string `yaml:"output" env:"BR_LOG_OUTPUT" env-default:"stderr"`
	FilePath   string `yaml:"filePath" env:"BR_LOG_FILE_PATH"`
	MaxSize    int    `yaml:"maxSize" env:"BR_LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `yaml:"maxBackups" env:"BR_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"maxAge" env:"BR_LOG_MAX_AGE" env-default:"7"`
	Compress   bool   `yaml:"compress" env:"BR_LOG_COMPRESS" env-default:"true"`
}

// ToLogging переводит секцию конфигурации в logging.Config.
func (c *LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		Output:     c.Output,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

func getDefaultLoggingConfig() *LoggingConfig {
	d := logging.DefaultConfig()
	return &LoggingConfig{
		Level:      d.Level,
		Format:     d.Format,
		Output:     d.Output,
		FilePath:   d.FilePath,
		MaxSize:    d.MaxSize,
		MaxBackups: d.MaxBackups,
		MaxAge:     d.MaxAge,
		Compress:   d.Compress,
	}
}

// loadLoggingConfig берёт секцию из app.yaml (или значения по умолчанию)
// и применяет поверх неё BR_LOG_*.
func loadLoggingConfig(l logging.Logger, cfg *Config) (*LoggingConfig, error) {
	loggingConfig := getDefaultLoggingConfig()
	if cfg.AppConfig != nil && cfg.AppConfig.Logging != (LoggingConfig{}) {
		loggingConfig = &cfg.AppConfig.Logging
	}
	if err := cleanenv.ReadEnv(loggingConfig); err != nil {
		return nil, fmt.Errorf("ошибка чтения BR_LOG_*: %w", err)
	}
	if loggingConfig.Output == logging.OutputFile && loggingConfig.FilePath == "" {
		loggingConfig.FilePath = logging.DefaultFilePath
	}
	l.Debug("Logging конфигурация загружена",
		"level", loggingConfig.Level,
		"format", loggingConfig.Format,
		"output", loggingConfig.Output,
	)
	return loggingConfig, nil
}
