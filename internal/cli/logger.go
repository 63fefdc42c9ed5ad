package cli

import (
	"github.com/glorpus-work/geofetch/internal/logger"
	"github.com/glorpus-work/geofetch/pkg/config"
)

// setupLogging configures the shared logger from the loaded configuration.
func setupLogging(cfg *config.Config) {
	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
}
