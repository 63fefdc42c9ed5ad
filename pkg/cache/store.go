// Package cache is the durable, file-backed store of retrieved resources.
//
// Entries live flat under one cache directory, named by the sanitized
// external form of their URL. Every operation is serialized by a single
// store-wide lock: an in-process mutex plus a file lock that extends the
// exclusion to other processes sharing the directory. Read and existence
// failures are reported as misses.
package cache

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/glorpus-work/geofetch/internal/logger"
	"github.com/glorpus-work/geofetch/pkg/archive"
	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/fsutil"
	"github.com/glorpus-work/geofetch/pkg/locator"
	"github.com/glorpus-work/geofetch/pkg/result"
)

// Store implements Manager on the local filesystem.
type Store struct {
	root        string
	locator     *locator.Locator
	mu          sync.Mutex
	fileLock    *flock.Flock
	lockTimeout time.Duration
	archives    *archive.Manager
}

// NewStore creates a store rooted at root, the data-file store. Entries are
// placed in the locator's cache directory below it. A nil locator uses
// locator.DefaultDirectory.
func NewStore(root string, loc *locator.Locator) (*Store, error) {
	if root == "" {
		return nil, pkgerrors.ErrCacheDirectory
	}
	if loc == nil {
		loc = locator.New(locator.DefaultDirectory)
	}
	return &Store{
		root:        root,
		locator:     loc,
		fileLock:    flock.New(filepath.Join(root, LockFileName)),
		lockTimeout: DefaultLockTimeout,
		archives:    archive.NewManager(),
	}, nil
}

// GetDirectory returns the cache directory path.
func (s *Store) GetDirectory() string {
	return filepath.Join(s.root, s.locator.Directory())
}

// Path returns the file an entry for u is stored at.
func (s *Store) Path(u *url.URL) string {
	return filepath.Join(s.root, s.locator.Locate(u.String()))
}

// lock acquires the store-wide lock. The returned function releases it.
func (s *Store) lock(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if err := fsutil.EnsureDir(s.root); err != nil {
		s.mu.Unlock()
		return nil, pkgerrors.Wrapf(pkgerrors.ErrCacheLock, "failed to create %s: %v", s.root, err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	locked, err := s.fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		s.mu.Unlock()
		if err == nil {
			err = errors.New("timeout")
		}
		return nil, pkgerrors.Wrapf(pkgerrors.ErrCacheLock, "%v", err)
	}

	return func() {
		if err := s.fileLock.Unlock(); err != nil {
			logger.Warn("Failed to release cache lock", logger.Fields{"error": err})
		}
		s.mu.Unlock()
	}, nil
}

// Exists reports whether an entry for u is present.
func (s *Store) Exists(u *url.URL) bool {
	unlock, err := s.lock(context.Background())
	if err != nil {
		logger.Warn("Cache unavailable", logger.Fields{"url": u.String(), "error": err})
		return false
	}
	defer unlock()

	info, err := os.Stat(s.Path(u))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the entry for u. A missing or unreadable entry is a miss.
func (s *Store) Read(u *url.URL) (*result.File, bool) {
	unlock, err := s.lock(context.Background())
	if err != nil {
		logger.Warn("Cache unavailable", logger.Fields{"url": u.String(), "error": err})
		return nil, false
	}
	defer unlock()

	f, err := result.NewFile(s.Path(u))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Failed to read cache entry", logger.Fields{"url": u.String(), "error": err})
		}
		return nil, false
	}
	return f, true
}

// LastModified returns the modification time of the entry for u.
func (s *Store) LastModified(u *url.URL) (time.Time, bool) {
	f, ok := s.Read(u)
	if !ok {
		return time.Time{}, false
	}
	return f.LastModified()
}

// Write atomically replaces the entry for u with data. A non-zero modTime is
// recorded as the entry's modification time.
func (s *Store) Write(u *url.URL, data []byte, modTime time.Time) error {
	unlock, err := s.lock(context.Background())
	if err != nil {
		return err
	}
	defer unlock()

	path := s.Path(u)
	if err := fsutil.WriteFileAtomic(path, data, EntryPerm, modTime); err != nil {
		return pkgerrors.Wrapf(pkgerrors.ErrCacheWrite, "%s: %v", u.String(), err)
	}
	logger.Debug("Cached resource", logger.Fields{"url": u.String(), "path": path, "bytes": len(data)})
	return nil
}

// GetInfo returns information about the cache.
func (s *Store) GetInfo() (*Info, error) {
	unlock, err := s.lock(context.Background())
	if err != nil {
		return nil, err
	}
	defer unlock()

	info := &Info{Directory: s.GetDirectory()}
	err = walkEntries(info.Directory, func(_ string, fi fs.FileInfo) error {
		info.Files++
		info.TotalSize += fi.Size()
		mt := fi.ModTime()
		if info.Newest.IsZero() || mt.After(info.Newest) {
			info.Newest = mt
		}
		if info.Oldest.IsZero() || mt.Before(info.Oldest) {
			info.Oldest = mt
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get cache info")
	}
	return info, nil
}

// Clean removes every entry and returns what was freed.
func (s *Store) Clean() (*CleanResult, error) {
	unlock, err := s.lock(context.Background())
	if err != nil {
		return nil, err
	}
	defer unlock()

	res := &CleanResult{}
	dir := s.GetDirectory()
	err = walkEntries(dir, func(_ string, fi fs.FileInfo) error {
		res.FilesRemoved++
		res.TotalFreed += fi.Size()
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrCacheClean, "%v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrCacheClean, "failed to remove directory %s: %v", dir, err)
	}
	if err := os.MkdirAll(dir, CacheDirPerm); err != nil {
		return res, pkgerrors.Wrapf(pkgerrors.ErrCacheClean, "failed to recreate directory %s: %v", dir, err)
	}
	return res, nil
}

// Export writes a tar.gz snapshot of all entries to w and returns the number
// of entries written.
func (s *Store) Export(ctx context.Context, w io.Writer) (int, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	dir := s.GetDirectory()
	if err := fsutil.EnsureDir(dir); err != nil {
		return 0, pkgerrors.Wrapf(pkgerrors.ErrCacheExport, "%v", err)
	}
	n, err := s.archives.Create(ctx, dir, w, isEntryName)
	if err != nil {
		return 0, pkgerrors.Wrapf(pkgerrors.ErrCacheExport, "%v", err)
	}
	return n, nil
}

// Import restores entries from a snapshot made by Export, overwriting
// entries of the same name. Archive members that could not be entry names
// are ignored.
func (s *Store) Import(ctx context.Context, archivePath string) (int, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := s.archives.ExtractAll(ctx, archivePath, s.GetDirectory(), EntryPerm, isEntryName)
	if err != nil {
		return n, pkgerrors.Wrapf(pkgerrors.ErrCacheImport, "%v", err)
	}
	return n, nil
}

// isEntryName reports whether name could have been produced by the locator.
func isEntryName(name string) bool {
	return name != "" && !strings.HasPrefix(name, tempPrefix) && locator.Sanitize(name) == name
}

// walkEntries calls fn for every regular entry in dir. A missing dir has no entries.
func walkEntries(dir string, fn func(path string, fi fs.FileInfo) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return pkgerrors.Wrapf(err, "error reading directory %s", dir)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		if err := fn(filepath.Join(dir, e.Name()), fi); err != nil {
			return err
		}
	}
	return nil
}
