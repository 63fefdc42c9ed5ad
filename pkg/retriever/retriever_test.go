package retriever

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect runs r and returns every result handed to the post-processor.
func collect(t *testing.T, f *Factory, rawURL string, since time.Time) []result.Result {
	t.Helper()
	u, err := ParseURL(rawURL)
	require.NoError(t, err)

	var got []result.Result
	r, err := f.New(u, since, PostProcessorFunc(func(res result.Result) {
		got = append(got, res)
	}))
	require.NoError(t, err)
	r.Run(context.Background())
	return got
}

func TestHTTPRetriever(t *testing.T) {
	lastModified := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name         string
		handler      http.HandlerFunc
		since        time.Time
		expectData   string
		expectNotMod bool
		expectStatus int
	}{
		{
			name: "successful download",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))
				_, _ = w.Write([]byte("tile bytes"))
			},
			expectData: "tile bytes",
		},
		{
			name: "not modified",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("If-Modified-Since") == "" {
					_, _ = w.Write([]byte("unconditional"))
					return
				}
				w.WriteHeader(http.StatusNotModified)
			},
			since:        lastModified,
			expectNotMod: true,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectStatus: http.StatusNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			got := collect(t, NewFactory(time.Second, "test"), server.URL+"/tile.png", tt.since)
			require.Len(t, got, 1, "post-processor must run exactly once")
			res := got[0]

			switch {
			case tt.expectNotMod:
				assert.True(t, result.IsNotModified(res))
				assert.False(t, res.HasData())
			case tt.expectStatus != 0:
				assert.False(t, res.HasData())
				var statusErr *StatusError
				require.ErrorAs(t, res.Err(), &statusErr)
				assert.Equal(t, tt.expectStatus, statusErr.Code)
				assert.ErrorIs(t, res.Err(), pkgerrors.ErrDownloadFailed)
				assert.Contains(t, res.Err().Error(), "unexpected status code")
			default:
				require.True(t, res.HasData())
				data, err := res.Bytes()
				require.NoError(t, err)
				assert.Equal(t, tt.expectData, string(data))
				lm, ok := res.LastModified()
				assert.True(t, ok)
				assert.True(t, lastModified.Equal(lm))
			}
		})
	}
}

func TestHTTPRetriever_Headers(t *testing.T) {
	since := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	var gotUA, gotIMS string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotIMS = r.Header.Get("If-Modified-Since")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	collect(t, NewFactory(time.Second, ""), server.URL, since)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "Wed, 01 Jan 2020 12:00:00 GMT", gotIMS)

	collect(t, NewFactory(time.Second, "custom/2.0"), server.URL, time.Time{})
	assert.Equal(t, "custom/2.0", gotUA)
	assert.Empty(t, gotIMS, "no precondition means no If-Modified-Since header")
}

func TestHTTPRetriever_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := server.URL
	server.Close()

	got := collect(t, NewFactory(time.Second, "test"), target, time.Time{})
	require.Len(t, got, 1)
	assert.False(t, got[0].HasData())
	assert.ErrorIs(t, got[0].Err(), pkgerrors.ErrDownloadFailed)
}

func TestFileRetriever(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layer.xml")
	require.NoError(t, os.WriteFile(path, []byte("<layer/>"), 0o644))
	mtime := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()

	tests := []struct {
		name         string
		rawURL       string
		since        time.Time
		expectData   string
		expectNotMod bool
		expectErr    bool
	}{
		{name: "reads file", rawURL: fileURL, expectData: "<layer/>"},
		{name: "newer than precondition", rawURL: fileURL, since: mtime.Add(-time.Hour), expectData: "<layer/>"},
		{name: "not modified at same time", rawURL: fileURL, since: mtime, expectNotMod: true},
		{name: "not modified when older", rawURL: fileURL, since: mtime.Add(time.Hour), expectNotMod: true},
		{name: "missing file", rawURL: fileURL + ".missing", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, NewFactory(time.Second, "test"), tt.rawURL, tt.since)
			require.Len(t, got, 1)
			res := got[0]
			switch {
			case tt.expectNotMod:
				assert.True(t, result.IsNotModified(res))
			case tt.expectErr:
				assert.False(t, res.HasData())
				assert.ErrorIs(t, res.Err(), pkgerrors.ErrDownloadFailed)
			default:
				data, err := res.Bytes()
				require.NoError(t, err)
				assert.Equal(t, tt.expectData, string(data))
				lm, ok := res.LastModified()
				assert.True(t, ok)
				assert.True(t, mtime.Equal(lm))
			}
		})
	}
}

func TestRun_PanicStillPostProcesses(t *testing.T) {
	u, err := url.Parse("http://example.com/x")
	require.NoError(t, err)

	var got []result.Result
	b := newBase(u, time.Time{}, PostProcessorFunc(func(res result.Result) { got = append(got, res) }))
	b.run(context.Background(), func(context.Context) result.Result { panic("boom") })

	require.Len(t, got, 1)
	assert.False(t, got[0].HasData())
	assert.ErrorIs(t, got[0].Err(), pkgerrors.ErrDownloadFailed)
}

func TestIdentity(t *testing.T) {
	u1, _ := url.Parse("http://x/tile.png")
	u2, _ := url.Parse("http://x/tile.png")
	since := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, NewIdentity(u1, time.Time{}), NewIdentity(u2, time.Time{}))
	assert.Equal(t, NewIdentity(u1, since), NewIdentity(u2, since.In(time.Local)))
	assert.NotEqual(t, NewIdentity(u1, time.Time{}), NewIdentity(u1, since))

	got, ok := NewIdentity(u1, since).IfModifiedSince()
	assert.True(t, ok)
	assert.True(t, since.Equal(got))
	_, ok = NewIdentity(u1, time.Time{}).IfModifiedSince()
	assert.False(t, ok)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name      string
		rawURL    string
		expectErr error
	}{
		{name: "http", rawURL: "http://x/tile.png"},
		{name: "https", rawURL: "HTTPS://x/theme.xml"},
		{name: "file", rawURL: "file:///tmp/layer.xml"},
		{name: "empty", rawURL: "  ", expectErr: pkgerrors.ErrInvalidURL},
		{name: "no scheme", rawURL: "tiles/1/2/3.png", expectErr: pkgerrors.ErrInvalidURL},
		{name: "missing host", rawURL: "http:///tile.png", expectErr: pkgerrors.ErrInvalidURL},
		{name: "unparseable", rawURL: "http://[::1", expectErr: pkgerrors.ErrInvalidURL},
		{name: "unsupported scheme", rawURL: "ftp://x/tile.png", expectErr: pkgerrors.ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseURL(tt.rawURL)
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, u)
		})
	}
}

func TestFactory_UnsupportedScheme(t *testing.T) {
	u, _ := url.Parse("gopher://x/")
	_, err := NewFactory(time.Second, "").New(u, time.Time{}, nil)
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedScheme)
}
