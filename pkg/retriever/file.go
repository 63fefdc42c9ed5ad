package retriever

import (
	"context"
	"os"
	"time"

	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/result"
)

// FileRetriever reads a local file URL. With a precondition it reports
// "not modified" when the file is no newer than the timestamp, compared at
// second granularity like HTTP dates.
type FileRetriever struct {
	base
}

// Run reads the file and post-processes the outcome.
func (r *FileRetriever) Run(ctx context.Context) {
	r.run(ctx, r.fetch)
}

func (r *FileRetriever) fetch(ctx context.Context) result.Result {
	if err := ctx.Err(); err != nil {
		return result.NewFailure(pkgerrors.Wrap(pkgerrors.ErrDownloadFailed, err.Error()))
	}

	path := r.url.Path
	info, err := os.Stat(path)
	if err != nil {
		return result.NewFailure(pkgerrors.Wrap(pkgerrors.ErrDownloadFailed, err.Error()))
	}
	if !r.since.IsZero() && !info.ModTime().Truncate(time.Second).After(r.since.Truncate(time.Second)) {
		return result.NotModified()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return result.NewFailure(pkgerrors.Wrap(pkgerrors.ErrDownloadFailed, err.Error()))
	}
	return result.NewBuffer(data, info.ModTime())
}
