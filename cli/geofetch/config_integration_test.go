//go:build integration

package main

import (
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_InitShowSetGet(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := runCLI(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, cfgPath)

	_, err = runCLI(t, "--config", cfgPath, "config", "init")
	assert.ErrorIs(t, err, pkgerrors.ErrConfigFileExists)

	_, err = runCLI(t, "--config", cfgPath, "config", "init", "--force")
	require.NoError(t, err)

	_, err = runCLI(t, "--config", cfgPath, "config", "set", "workers", "7")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "config", "get", "workers")
	require.NoError(t, err)
	assert.Equal(t, "7", strings.TrimSpace(out))

	out, err = runCLI(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "SETTING")
	assert.Contains(t, out, "workers")
	assert.Contains(t, out, "cache_dir_name")
}

func TestConfig_SetDoesNotPersistFlagOverrides(t *testing.T) {
	cfgPath := testutil.SetupTestConfig(t, t.TempDir(), "log_level: warn")

	_, err := runCLI(t, "--config", cfgPath, "-v", "config", "set", "workers", "3")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "config", "get", "log_level")
	require.NoError(t, err)
	assert.Equal(t, "warn", strings.TrimSpace(out))
}

func TestConfig_SetRejectsInvalidValues(t *testing.T) {
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	tests := []struct {
		key, value string
		want       error
	}{
		{"workers", "many", pkgerrors.ErrInvalidIntegerValue},
		{"http_timeout", "soon", pkgerrors.ErrInvalidDurationValue},
		{"no_such_key", "1", pkgerrors.ErrUnknownConfigKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := runCLI(t, "--config", cfgPath, "config", "set", tt.key, tt.value)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "geofetch version")
}
