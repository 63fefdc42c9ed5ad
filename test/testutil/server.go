// Package testutil holds helpers shared by the command line integration tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glorpus-work/geofetch/internal/logger"
)

// TestServer serves a fixed set of files with Last-Modified headers and
// counts the requests that reached it.
type TestServer struct {
	Server *httptest.Server
	URL    string

	hits atomic.Int64
}

// NewTestServer serves files keyed by URL path, all stamped with modTime.
// It honours If-Modified-Since and is closed when the test ends.
func NewTestServer(t *testing.T, files map[string]string, modTime time.Time) *TestServer {
	t.Helper()

	ts := &TestServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, filepath.Base(r.URL.Path), modTime, strings.NewReader(body))
	}))
	ts.URL = ts.Server.URL
	t.Cleanup(ts.Server.Close)

	logger.Debugf("Test server listening on %s", ts.URL)
	return ts
}

// Hits returns the number of requests served so far.
func (ts *TestServer) Hits() int64 {
	return ts.hits.Load()
}

// SetupTestConfig writes a config file pointing the cache at dataDir and
// returns its path. Extra lines are appended to the settings block.
func SetupTestConfig(t *testing.T, dataDir string, extra ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("version: \"1.0\"\nsettings:\n")
	b.WriteString("  data_dir: " + strings.ReplaceAll(dataDir, "\\", "\\\\") + "\n")
	b.WriteString("  http_timeout: 5s\n")
	b.WriteString("  workers: 2\n")
	for _, line := range extra {
		b.WriteString("  " + line + "\n")
	}

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}
