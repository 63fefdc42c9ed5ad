package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/glorpus-work/geofetch/pkg/errors"
)

// Keys lists the settings addressable by SetValue and GetValue, in display order.
func Keys() []string {
	return []string{
		"data_dir",
		"cache_dir_name",
		"workers",
		"http_timeout",
		"sweep_interval",
		"user_agent",
		"output_format",
		"log_level",
	}
}

// SetValue sets a configuration value by key. The result is not validated;
// call Validate before saving.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "data_dir":
		c.Settings.DataDir = value
	case "cache_dir_name":
		c.Settings.CacheDirName = value
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %s", errors.ErrInvalidIntegerValue, key, value)
		}
		c.Settings.Workers = n
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %s", errors.ErrInvalidDurationValue, key, value)
		}
		c.Settings.HTTPTimeout = d
	case "sweep_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %s", errors.ErrInvalidDurationValue, key, value)
		}
		c.Settings.SweepInterval = d
	case "user_agent":
		c.Settings.UserAgent = value
	case "output_format":
		c.Settings.OutputFormat = value
	case "log_level":
		c.Settings.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return nil
}

// GetValue returns a configuration value by key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "data_dir":
		return c.Settings.DataDir, nil
	case "cache_dir_name":
		return c.Settings.CacheDirName, nil
	case "workers":
		return strconv.Itoa(c.Settings.Workers), nil
	case "http_timeout":
		return c.Settings.HTTPTimeout.String(), nil
	case "sweep_interval":
		return c.Settings.SweepInterval.String(), nil
	case "user_agent":
		return c.Settings.UserAgent, nil
	case "output_format":
		return c.Settings.OutputFormat, nil
	case "log_level":
		return c.Settings.LogLevel, nil
	default:
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
}

// ToMap returns every setting keyed by its YAML name.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		v, _ := c.GetValue(key)
		result[key] = v
	}
	return result
}
