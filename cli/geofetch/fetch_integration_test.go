//go:build integration

package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var modTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFetch_DownloadsThenServesFromCache(t *testing.T) {
	srv := testutil.NewTestServer(t, map[string]string{"/tiles.db": "tile data"}, modTime)
	dataDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, dataDir)

	out, err := runCLI(t, "--config", cfgPath, "fetch", srv.URL+"/tiles.db")
	require.NoError(t, err)
	assert.Contains(t, out, "downloaded")
	assert.EqualValues(t, 1, srv.Hits())

	out, err = runCLI(t, "--config", cfgPath, "fetch", srv.URL+"/tiles.db")
	require.NoError(t, err)
	assert.Contains(t, out, "cached")
	assert.EqualValues(t, 1, srv.Hits(), "cached entry must not hit the network")
}

func TestFetch_NoCacheAlwaysDownloads(t *testing.T) {
	srv := testutil.NewTestServer(t, map[string]string{"/a": "alpha"}, modTime)
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	for range 2 {
		_, err := runCLI(t, "--config", cfgPath, "fetch", "--no-cache", srv.URL+"/a")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, srv.Hits())
}

func TestFetch_IfModifiedKeepsCachedEntry(t *testing.T) {
	srv := testutil.NewTestServer(t, map[string]string{"/a": "alpha"}, modTime)
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	_, err := runCLI(t, "--config", cfgPath, "fetch", srv.URL+"/a")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "fetch", "--if-modified", srv.URL+"/a")
	require.NoError(t, err)
	assert.Contains(t, out, "cached")
	assert.EqualValues(t, 2, srv.Hits())
}

func TestFetch_OutputFile(t *testing.T) {
	srv := testutil.NewTestServer(t, map[string]string{"/a": "alpha"}, modTime)
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())
	target := filepath.Join(t.TempDir(), "out", "a.bin")

	_, err := runCLI(t, "--config", cfgPath, "fetch", "-O", target, srv.URL+"/a")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	fi, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(modTime))
}

func TestFetch_OutputStdout(t *testing.T) {
	srv := testutil.NewTestServer(t, map[string]string{"/a": "alpha"}, modTime)
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	out, err := runCLI(t, "--config", cfgPath, "fetch", "-O", "-", srv.URL+"/a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", out)
}

func TestFetch_JSONReport(t *testing.T) {
	srv := testutil.NewTestServer(t, map[string]string{"/a": "alpha", "/b": "bravo!"}, modTime)
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	out, err := runCLI(t, "--config", cfgPath, "--format", "json", "fetch", "--concurrency", "2", srv.URL+"/a", srv.URL+"/b")
	require.NoError(t, err)

	var reports []struct {
		URL          string    `json:"url"`
		Status       string    `json:"status"`
		Size         int64     `json:"size"`
		LastModified time.Time `json:"last_modified"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, srv.URL+"/a", reports[0].URL)
	assert.EqualValues(t, 5, reports[0].Size)
	assert.EqualValues(t, 6, reports[1].Size)
	for _, r := range reports {
		assert.Equal(t, "downloaded", r.Status)
		assert.True(t, r.LastModified.Equal(modTime))
	}
}

func TestFetch_FailureIsReported(t *testing.T) {
	srv := testutil.NewTestServer(t, map[string]string{"/a": "alpha"}, modTime)
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	out, err := runCLI(t, "--config", cfgPath, "fetch", srv.URL+"/a", srv.URL+"/missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrDownloadFailed))
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "downloaded")
}

func TestFetch_FileURL(t *testing.T) {
	src := filepath.Join(t.TempDir(), "local.txt")
	require.NoError(t, os.WriteFile(src, []byte("local"), 0o644))
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	out, err := runCLI(t, "--config", cfgPath, "fetch", "-O", "-", "file://"+filepath.ToSlash(src))
	require.NoError(t, err)
	assert.Equal(t, "local", out)
}

func TestFetch_FlagValidation(t *testing.T) {
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"conflicting flags", []string{"fetch", "--no-cache", "--if-modified", "http://example.com/a"}, pkgerrors.ErrConflictingFlags},
		{"output with many urls", []string{"fetch", "-O", "x", "http://example.com/a", "http://example.com/b"}, pkgerrors.ErrOutputSingleURL},
		{"zero concurrency", []string{"fetch", "--concurrency", "0", "http://example.com/a"}, pkgerrors.ErrInvalidConcurrency},
		{"unsupported scheme", []string{"fetch", "ftp://example.com/a"}, pkgerrors.ErrUnsupportedScheme},
		{"empty url", []string{"fetch", " "}, pkgerrors.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"--config", cfgPath}, tt.args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
