package retriever

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/glorpus-work/geofetch/internal/logger"
	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/result"
)

// HTTPRetriever fetches an http or https URL with an optional
// If-Modified-Since precondition.
type HTTPRetriever struct {
	base
	client    *http.Client
	userAgent string
}

// Run performs the GET and post-processes the outcome.
func (r *HTTPRetriever) Run(ctx context.Context) {
	r.run(ctx, r.fetch)
}

func (r *HTTPRetriever) fetch(ctx context.Context) result.Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url.String(), http.NoBody)
	if err != nil {
		return result.NewFailure(pkgerrors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("User-Agent", r.userAgent)
	if !r.since.IsZero() {
		req.Header.Set("If-Modified-Since", r.since.UTC().Format(http.TimeFormat))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Debug("HTTP retrieval failed", logger.Fields{"url": r.id.URL, "error": err})
		return result.NewFailure(pkgerrors.Wrap(pkgerrors.ErrDownloadFailed, err.Error()))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return result.NotModified()
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Continue processing
	default:
		logger.Debug("HTTP retrieval returned unexpected status", logger.Fields{"url": r.id.URL, "status": resp.StatusCode})
		return result.NewFailure(&StatusError{URL: r.id.URL, Code: resp.StatusCode})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.NewFailure(pkgerrors.Wrap(pkgerrors.ErrDownloadFailed, "failed to read response body: "+err.Error()))
	}

	var lastModified time.Time
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			lastModified = t
		}
	}
	return result.NewBuffer(data, lastModified)
}
