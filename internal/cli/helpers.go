package cli

import (
	"fmt"

	"github.com/glorpus-work/geofetch/pkg/cache"
	"github.com/glorpus-work/geofetch/pkg/config"
	"github.com/glorpus-work/geofetch/pkg/download"
	"github.com/glorpus-work/geofetch/pkg/locator"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
)

// loadFileConfig loads the configuration file as written, without flag overrides.
func loadFileConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := loadFileConfig()
	if err != nil {
		return nil, err
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setupLogging(cfg)
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}
	return config.GetDefaultConfigPath()
}

// newStore opens the cache store described by cfg.
func newStore(cfg *config.Config) (*cache.Store, error) {
	return cache.NewStore(cfg.GetDataDir(), locator.New(cfg.Settings.CacheDirName))
}

// newDownloader builds a downloader over store. workers overrides the
// configured pool size when positive.
func newDownloader(cfg *config.Config, store *cache.Store, workers int) (*download.Downloader, error) {
	if workers <= 0 {
		workers = cfg.Settings.Workers
	}
	return download.New(download.Options{
		Cache:         store,
		Workers:       workers,
		HTTPTimeout:   cfg.Settings.HTTPTimeout,
		UserAgent:     cfg.Settings.UserAgent,
		SweepInterval: cfg.Settings.SweepInterval,
	})
}
