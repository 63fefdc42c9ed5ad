// Package errors defines the sentinel errors shared across geofetch and small
// helpers for adding context to them.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")
	ErrConfigVersion     = fmt.Errorf("unsupported config version")

	// Settings validation errors.
	ErrHTTPTimeoutNegative  = fmt.Errorf("http_timeout cannot be negative")
	ErrSweepIntervalInvalid = fmt.Errorf("sweep_interval must be positive")
	ErrWorkersInvalid       = fmt.Errorf("workers must be at least 1")
	ErrInvalidOutputFormat  = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrCacheDirNameInvalid  = fmt.Errorf("cache_dir_name must be a single path element")
	ErrUnknownConfigKey     = fmt.Errorf("unknown configuration key")
	ErrInvalidDurationValue = fmt.Errorf("invalid duration value")
	ErrInvalidIntegerValue  = fmt.Errorf("invalid integer value")

	// Retrieval errors.
	ErrInvalidURL        = fmt.Errorf("invalid URL")
	ErrUnsupportedScheme = fmt.Errorf("unsupported URL scheme")
	ErrDownloadFailed    = fmt.Errorf("download failed")
	ErrServiceClosed     = fmt.Errorf("retrieval service closed")

	// Cache errors.
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")
	ErrCacheWrite     = fmt.Errorf("failed to write cache entry")
	ErrCacheLock      = fmt.Errorf("failed to lock cache")
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrCacheExport    = fmt.Errorf("failed to export cache")
	ErrCacheImport    = fmt.Errorf("failed to import cache")

	// Command line errors.
	ErrOutputSingleURL    = fmt.Errorf("--output requires exactly one URL")
	ErrConflictingFlags   = fmt.Errorf("--no-cache and --if-modified cannot be combined")
	ErrInvalidConcurrency = fmt.Errorf("--concurrency must be at least 1")

	// Filesystem errors.
	ErrEmptyPaths = fmt.Errorf("source and destination paths cannot be empty")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidURLWithDetails reports the offending URL and why it was rejected.
func ErrInvalidURLWithDetails(rawURL, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrInvalidURL, rawURL, reason)
}

// ErrUnsupportedSchemeWithName names the scheme that has no retriever.
func ErrUnsupportedSchemeWithName(scheme string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: error, warn, info, debug", ErrInvalidLogLevel, level)
}

// ErrConfigVersionWithDetails reports a config version outside the supported range.
func ErrConfigVersionWithDetails(v, constraint string) error {
	return fmt.Errorf("%w: %s (supported: %s)", ErrConfigVersion, v, constraint)
}
