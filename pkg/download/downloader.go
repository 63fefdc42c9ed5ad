// Package download is the public entry point for fetching resources.
//
// A Downloader composes the cache store, the in-flight tracker and the
// retrieval service. Concurrent requests for the same URL and precondition
// share one fetch. Every fetch that yields data is written to the cache
// before any handler sees it.
package download

import (
	"context"
	"net/url"
	"time"

	"github.com/glorpus-work/geofetch/internal/logger"
	"github.com/glorpus-work/geofetch/pkg/cache"
	"github.com/glorpus-work/geofetch/pkg/fsutil"
	"github.com/glorpus-work/geofetch/pkg/locator"
	"github.com/glorpus-work/geofetch/pkg/result"
	"github.com/glorpus-work/geofetch/pkg/retriever"
	"github.com/glorpus-work/geofetch/pkg/service"
	"github.com/glorpus-work/geofetch/pkg/tracker"
)

// Downloader coordinates cached and live retrievals.
type Downloader struct {
	cache   CacheStore
	service RetrievalService
	factory RetrieverFactory
	tracker *tracker.Tracker
}

// New creates a Downloader. Call Start before expecting fetches to complete
// and Close when done.
func New(opts Options) (*Downloader, error) {
	store := opts.Cache
	if store == nil {
		dataDir := opts.DataDir
		if dataDir == "" {
			dataDir = fsutil.GetDataDir()
		}
		dirName := opts.CacheDirName
		if dirName == "" {
			dirName = locator.DefaultDirectory
		}
		s, err := cache.NewStore(dataDir, locator.New(dirName))
		if err != nil {
			return nil, err
		}
		store = s
	}

	factory := opts.Factory
	if factory == nil {
		factory = retriever.NewFactory(opts.HTTPTimeout, opts.UserAgent)
	}

	svc := opts.Service
	if svc == nil {
		svc = service.New(opts.Workers)
	}

	return &Downloader{
		cache:   store,
		service: svc,
		factory: factory,
		tracker: tracker.New(svc, opts.SweepInterval),
	}, nil
}

// Start launches the retrieval workers and the in-flight sweep.
func (d *Downloader) Start(ctx context.Context) {
	d.service.Start(ctx)
	d.tracker.Start(ctx)
}

// Close stops the sweep and the workers. Fetches still queued complete with
// a failure so that no handler is left waiting.
func (d *Downloader) Close() {
	d.tracker.Stop()
	d.service.Close()
}

// DownloadImmediately returns the resource at rawURL, blocking until it is
// available. With useCache, a cached entry with data is returned without a
// fetch. Fetch failures are returned as a result with no data; only an
// invalid URL, a closed downloader or ctx ending produce an error.
func (d *Downloader) DownloadImmediately(ctx context.Context, rawURL string, useCache bool) (result.Result, error) {
	u, err := retriever.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if useCache {
		if cached, ok := d.cache.Read(u); ok && cached.HasData() {
			logger.Debug("Serving from cache", logger.Fields{"url": u.String()})
			return cached, nil
		}
	}
	return d.wait(ctx, u, time.Time{})
}

// DownloadImmediatelyIfModified refreshes the resource at rawURL
// conditionally. A cached entry with data supplies the precondition and is
// returned when the resource is unchanged or cannot be fetched. New data
// replaces the cache entry and is returned.
func (d *Downloader) DownloadImmediatelyIfModified(ctx context.Context, rawURL string) (result.Result, error) {
	u, err := retriever.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	cached, since := d.cachedWithData(u)
	res, err := d.wait(ctx, u, since)
	if err != nil {
		return nil, err
	}
	if res.HasData() || cached == nil {
		return res, nil
	}
	if res.Err() != nil {
		logger.Warn("Fetch failed, using cached copy", logger.Fields{"url": u.String(), "error": res.Err()})
	}
	return cached, nil
}

// Download fetches the resource at rawURL in the background and passes the
// outcome to h. With useCache, a cached entry with data is handed to h
// before Download returns and nothing is fetched.
func (d *Downloader) Download(rawURL string, h Handler, useCache bool) error {
	u, err := retriever.ParseURL(rawURL)
	if err != nil {
		return err
	}
	h = orNoop(h)
	if useCache {
		if cached, ok := d.cache.Read(u); ok && cached.HasData() {
			h.Handle(cached, true)
			return nil
		}
	}
	return d.fetch(u, time.Time{}, h)
}

// DownloadIfModified hands a cached entry to cacheHandler immediately, then
// fetches conditionally on that entry's timestamp. downloadHandler receives
// the fetch outcome, which has no data when the resource is unchanged.
func (d *Downloader) DownloadIfModified(rawURL string, cacheHandler, downloadHandler Handler) error {
	return d.downloadBoth(rawURL, cacheHandler, downloadHandler, true)
}

// DownloadAnyway hands a cached entry to cacheHandler immediately and always
// fetches the latest version for downloadHandler.
func (d *Downloader) DownloadAnyway(rawURL string, cacheHandler, downloadHandler Handler) error {
	return d.downloadBoth(rawURL, cacheHandler, downloadHandler, false)
}

func (d *Downloader) downloadBoth(rawURL string, cacheHandler, downloadHandler Handler, ifModified bool) error {
	u, err := retriever.ParseURL(rawURL)
	if err != nil {
		return err
	}

	cached, since := d.cachedWithData(u)
	if cached != nil {
		orNoop(cacheHandler).Handle(cached, true)
	}
	if !ifModified {
		since = time.Time{}
	}
	return d.fetch(u, since, orNoop(downloadHandler))
}

// cachedWithData returns the cache entry for u and its timestamp when it has data.
func (d *Downloader) cachedWithData(u *url.URL) (*result.File, time.Time) {
	cached, ok := d.cache.Read(u)
	if !ok || !cached.HasData() {
		return nil, time.Time{}
	}
	since, _ := cached.LastModified()
	return cached, since
}

// wait joins the tracked fetch for (u, since) and blocks for its result.
// Returning early on ctx does not affect the shared fetch.
func (d *Downloader) wait(ctx context.Context, u *url.URL, since time.Time) (result.Result, error) {
	done := make(chan result.Result, 1)
	err := d.fetch(u, since, HandlerFunc(func(r result.Result, _ bool) {
		done <- r
	}))
	if err != nil {
		return nil, err
	}

	select {
	case r := <-done:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch registers h for the fetch identified by (u, since), starting one if
// none is in flight.
func (d *Downloader) fetch(u *url.URL, since time.Time, h Handler) error {
	id := retriever.NewIdentity(u, since)
	return d.tracker.Join(id, h, func(post retriever.PostProcessor) error {
		r, err := d.factory.New(u, since, d.writeThrough(u, post))
		if err != nil {
			return err
		}
		logger.Debug("Submitting retrieval", logger.Fields{"url": id.URL, "since": id.Since})
		return d.service.Submit(r)
	})
}

// writeThrough caches fetched data before passing the result on.
func (d *Downloader) writeThrough(u *url.URL, next retriever.PostProcessor) retriever.PostProcessor {
	return retriever.PostProcessorFunc(func(r result.Result) {
		if r.HasData() && r.Err() == nil {
			d.store(u, r)
		}
		next.Process(r)
	})
}

func (d *Downloader) store(u *url.URL, r result.Result) {
	data, err := r.Bytes()
	if err != nil {
		logger.Warn("Failed to read fetched data", logger.Fields{"url": u.String(), "error": err})
		return
	}
	modTime, _ := r.LastModified()
	if err := d.cache.Write(u, data, modTime); err != nil {
		logger.Warn("Failed to cache resource", logger.Fields{"url": u.String(), "error": err})
	}
}

func orNoop(h Handler) Handler {
	if h == nil {
		return HandlerFunc(func(result.Result, bool) {})
	}
	return h
}
