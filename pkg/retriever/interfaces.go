// Package retriever performs single fetches of HTTP(S) and file URLs.
//
// A Retriever is built for one (URL, precondition) pair and a PostProcessor.
// Run performs blocking I/O and hands the outcome to the PostProcessor
// exactly once, whether the fetch succeeded, reported "not modified", failed
// or panicked.
package retriever

import (
	"context"
	"net/url"
	"time"

	"github.com/glorpus-work/geofetch/pkg/result"
)

// Identity is the deduplication key of a retrieval. Two retrievers with equal
// identities are the same logical fetch.
type Identity struct {
	// URL is the normalized external form of the target.
	URL string
	// Since is the if-modified-since precondition in Unix milliseconds, 0 for none.
	Since int64
}

// NewIdentity builds the identity for u with an optional precondition.
func NewIdentity(u *url.URL, since time.Time) Identity {
	id := Identity{URL: u.String()}
	if !since.IsZero() {
		id.Since = since.UnixMilli()
	}
	return id
}

// IfModifiedSince returns the precondition timestamp, if any.
func (id Identity) IfModifiedSince() (time.Time, bool) {
	if id.Since == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(id.Since), true
}

// PostProcessor receives the outcome of a retrieval.
type PostProcessor interface {
	Process(r result.Result)
}

// PostProcessorFunc adapts a function to PostProcessor.
type PostProcessorFunc func(r result.Result)

// Process calls f(r).
func (f PostProcessorFunc) Process(r result.Result) { f(r) }

// Retriever is one executable fetch.
type Retriever interface {
	// Identity returns the deduplication key.
	Identity() Identity
	// Run fetches and then invokes the post-processor exactly once.
	Run(ctx context.Context)
}
