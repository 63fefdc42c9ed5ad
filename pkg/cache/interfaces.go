package cache

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/glorpus-work/geofetch/pkg/result"
)

// Manager defines the cache operations used by the downloader and the CLI.
type Manager interface {
	Exists(u *url.URL) bool
	Read(u *url.URL) (*result.File, bool)
	Write(u *url.URL, data []byte, modTime time.Time) error
	LastModified(u *url.URL) (time.Time, bool)
	Path(u *url.URL) string
	GetDirectory() string
	GetInfo() (*Info, error)
	Clean() (*CleanResult, error)
	Export(ctx context.Context, w io.Writer) (int, error)
	Import(ctx context.Context, archivePath string) (int, error)
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed   int64
	FilesRemoved int
}

// Info represents cache information.
type Info struct {
	Directory string
	TotalSize int64
	Files     int
	// Newest is the most recent entry modification time, zero when empty.
	Newest time.Time
	// Oldest is the least recent entry modification time, zero when empty.
	Oldest time.Time
}
