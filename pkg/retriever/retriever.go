package retriever

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/result"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "geofetch/1.0"

// StatusError reports an HTTP response that was neither 2xx nor 304.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d for %s", e.Code, e.URL)
}

// Unwrap lets errors.Is match ErrDownloadFailed.
func (e *StatusError) Unwrap() error { return pkgerrors.ErrDownloadFailed }

// base carries the fields shared by all retrievers and enforces the
// exactly-once post-processing contract.
type base struct {
	id    Identity
	url   *url.URL
	since time.Time
	post  PostProcessor
}

func newBase(u *url.URL, since time.Time, post PostProcessor) base {
	id := NewIdentity(u, since)
	// Round the precondition to what the identity stores.
	if t, ok := id.IfModifiedSince(); ok {
		since = t
	}
	return base{id: id, url: u, since: since, post: post}
}

func (b *base) Identity() Identity { return b.id }

func (b *base) run(ctx context.Context, fetch func(ctx context.Context) result.Result) {
	var res result.Result
	defer func() {
		if p := recover(); p != nil {
			res = result.NewFailure(fmt.Errorf("%w: retriever panic: %v", pkgerrors.ErrDownloadFailed, p))
		}
		if b.post != nil {
			b.post.Process(res)
		}
	}()
	res = fetch(ctx)
}

// Factory builds retrievers for supported URL schemes.
type Factory struct {
	client    *http.Client
	userAgent string
}

// NewFactory creates a factory whose HTTP retrievers use the given timeout and user agent.
func NewFactory(timeout time.Duration, userAgent string) *Factory {
	return NewFactoryWithClient(&http.Client{Timeout: timeout}, userAgent)
}

// NewFactoryWithClient creates a factory around an existing HTTP client.
func NewFactoryWithClient(client *http.Client, userAgent string) *Factory {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Factory{client: client, userAgent: userAgent}
}

// New returns an HTTP retriever for http and https URLs and a file retriever
// for file URLs. A zero since means no precondition.
func (f *Factory) New(u *url.URL, since time.Time, post PostProcessor) (Retriever, error) {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return &HTTPRetriever{base: newBase(u, since, post), client: f.client, userAgent: f.userAgent}, nil
	case "file":
		return &FileRetriever{base: newBase(u, since, post)}, nil
	default:
		return nil, pkgerrors.ErrUnsupportedSchemeWithName(u.Scheme)
	}
}

// ParseURL validates a raw URL for retrieval and returns its parsed form.
func ParseURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, pkgerrors.ErrInvalidURLWithDetails(rawURL, "empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, pkgerrors.ErrInvalidURLWithDetails(rawURL, err.Error())
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return nil, pkgerrors.ErrInvalidURLWithDetails(rawURL, "missing host")
		}
	case "file":
		if u.Path == "" {
			return nil, pkgerrors.ErrInvalidURLWithDetails(rawURL, "missing path")
		}
	case "":
		return nil, pkgerrors.ErrInvalidURLWithDetails(rawURL, "missing scheme")
	default:
		return nil, pkgerrors.ErrUnsupportedSchemeWithName(u.Scheme)
	}
	return u, nil
}
