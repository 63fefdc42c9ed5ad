// Package config provides configuration management for geofetch.
// It loads and validates YAML configuration files, fills unset values with
// defaults and writes configuration back atomically.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/fsutil"
	"github.com/glorpus-work/geofetch/pkg/locator"
	"github.com/glorpus-work/geofetch/pkg/retriever"
)

// Config represents the application configuration.
type Config struct {
	// Version is the configuration schema version.
	Version string `yaml:"version"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Storage settings
	DataDir      string `yaml:"data_dir,omitempty"`
	CacheDirName string `yaml:"cache_dir_name"`

	// Retrieval settings
	Workers       int           `yaml:"workers"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	UserAgent     string        `yaml:"user_agent"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // error, warn, info, debug
}

// Default configuration values.
const (
	// CurrentVersion is written to new configuration files.
	CurrentVersion = "1.0"

	// SupportedVersions is the range of schema versions this build reads.
	SupportedVersions = ">= 1.0, < 2.0"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultSweepInterval is how often finished in-flight entries are reaped.
	DefaultSweepInterval = 5 * time.Second

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"
)

var supportedVersions = version.MustConstraints(version.NewConstraint(SupportedVersions))

// DefaultWorkers returns the default retrieval pool size.
func DefaultWorkers() int {
	return max(2, runtime.NumCPU()/2)
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Settings: Settings{
			DataDir:       fsutil.GetDataDir(),
			CacheDirName:  locator.DefaultDirectory,
			Workers:       DefaultWorkers(),
			HTTPTimeout:   DefaultHTTPTimeout,
			SweepInterval: DefaultSweepInterval,
			UserAgent:     retriever.DefaultUserAgent,
			OutputFormat:  "text",
			LogLevel:      "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateVersion(c.Version); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateVersion(v string) error {
	parsed, err := version.NewVersion(v)
	if err != nil || !supportedVersions.Check(parsed) {
		return errors.ErrConfigVersionWithDetails(v, SupportedVersions)
	}
	return nil
}

func validateSettings(s Settings) error {
	if !validCacheDirName(s.CacheDirName) {
		return fmt.Errorf("%w: %q", errors.ErrCacheDirNameInvalid, s.CacheDirName)
	}
	if s.Workers < 1 {
		return errors.ErrWorkersInvalid
	}
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.SweepInterval <= 0 {
		return errors.ErrSweepIntervalInvalid
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

func validCacheDirName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(fsutil.GetConfigDir(), ConfigFileName)
}

// GetDataDir returns the data-file store root.
func (c *Config) GetDataDir() string {
	return c.Settings.DataDir
}

// GetCacheDir returns the cache directory below the data-file store root.
func (c *Config) GetCacheDir() string {
	return filepath.Join(c.Settings.DataDir, c.Settings.CacheDirName)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Settings.DataDir == "" {
		c.Settings.DataDir = defaults.Settings.DataDir
	}
	if c.Settings.CacheDirName == "" {
		c.Settings.CacheDirName = defaults.Settings.CacheDirName
	}
	if c.Settings.Workers == 0 {
		c.Settings.Workers = defaults.Settings.Workers
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.SweepInterval == 0 {
		c.Settings.SweepInterval = defaults.Settings.SweepInterval
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
