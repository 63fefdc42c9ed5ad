//go:generate mockgen -destination=./mocks/download.go . RetrievalService,RetrieverFactory

package download

import (
	"context"
	"net/url"
	"time"

	"github.com/glorpus-work/geofetch/pkg/result"
	"github.com/glorpus-work/geofetch/pkg/retriever"
)

// RetrievalService executes retrievers asynchronously.
type RetrievalService interface {
	Start(ctx context.Context)
	Submit(r retriever.Retriever) error
	PendingCount() int
	IsPending(id retriever.Identity) bool
	Close()
}

// RetrieverFactory builds the retriever for a URL and precondition.
type RetrieverFactory interface {
	New(u *url.URL, since time.Time, post retriever.PostProcessor) (retriever.Retriever, error)
}

// Handler receives a download result. cached is true when r was served from
// the cache without a fetch.
//
// Handlers of fetched results run while the in-flight table is locked and
// must return quickly.
type Handler interface {
	Handle(r result.Result, cached bool)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(r result.Result, cached bool)

// Handle calls f(r, cached).
func (f HandlerFunc) Handle(r result.Result, cached bool) { f(r, cached) }

// Options configure a Downloader. Zero values select defaults; Cache,
// Service and Factory replace the built-in collaborators.
type Options struct {
	// DataDir is the data-file store root holding the cache directory.
	DataDir string
	// CacheDirName is the cache directory below DataDir.
	CacheDirName string
	// Workers is the retrieval pool size.
	Workers int
	// HTTPTimeout bounds each HTTP fetch; zero means no timeout.
	HTTPTimeout time.Duration
	// UserAgent is sent with HTTP fetches.
	UserAgent string
	// SweepInterval is how often finished in-flight entries are reaped.
	SweepInterval time.Duration

	Cache   CacheStore
	Service RetrievalService
	Factory RetrieverFactory
}

// CacheStore is the part of the cache used for lookups and write-through.
type CacheStore interface {
	Read(u *url.URL) (*result.File, bool)
	Write(u *url.URL, data []byte, modTime time.Time) error
	Path(u *url.URL) string
}
