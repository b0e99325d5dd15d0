package app

import (
	"strings"

	"gorm-trashbin/pkg/logger"
)

// ConfigureLogging initialises the global logger from server settings,
// defaulting to info-level stdout output.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}

	if cfg.LogFile.Enabled && strings.TrimSpace(cfg.LogFile.Path) != "" {
		return logger.InitWithFile(level, logger.FileConfig{
			Path:       strings.TrimSpace(cfg.LogFile.Path),
			MaxSizeMB:  cfg.LogFile.MaxSizeMB,
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAgeDays: cfg.LogFile.MaxAgeDays,
			Compress:   cfg.LogFile.Compress,
		})
	}

	return logger.Init(level)
}
