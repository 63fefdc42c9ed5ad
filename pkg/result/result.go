// Package result defines the value returned by every retrieval: a live
// fetch, a cache read, or a failure. Results are immutable once built,
// except File results above InlineLimit, which read their file lazily.
package result

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
)

// Result is the uniform view over retrieved data.
type Result interface {
	// HasData reports whether the result carries content.
	HasData() bool
	// Bytes returns the full content.
	Bytes() ([]byte, error)
	// Reader returns a stream over the content. The caller closes it.
	Reader() (io.ReadCloser, error)
	// LastModified returns the content timestamp, if known.
	LastModified() (time.Time, bool)
	// Err returns the failure cause, or nil.
	Err() error
}

// Buffer is the result of a successful live fetch.
type Buffer struct {
	data         []byte
	lastModified time.Time
}

// NewBuffer wraps fetched bytes. A zero lastModified means unknown.
func NewBuffer(data []byte, lastModified time.Time) *Buffer {
	return &Buffer{data: data, lastModified: lastModified}
}

// HasData reports whether any bytes were fetched.
func (b *Buffer) HasData() bool { return len(b.data) > 0 }

// Bytes returns the fetched bytes. The slice must not be modified.
func (b *Buffer) Bytes() ([]byte, error) { return b.data, nil }

// Reader returns a stream over the fetched bytes.
func (b *Buffer) Reader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// LastModified returns the server- or filesystem-reported timestamp.
func (b *Buffer) LastModified() (time.Time, bool) {
	return b.lastModified, !b.lastModified.IsZero()
}

// Err always returns nil.
func (b *Buffer) Err() error { return nil }

// InlineLimit is the largest file NewFile reads into memory. Smaller entries
// are captured whole, so later rewrites of the file do not change the result.
// Larger files are read lazily and reflect the file at the time of reading.
const InlineLimit = 1 << 20

// File is a result backed by a cache file on disk.
type File struct {
	path    string
	size    int64
	modTime time.Time

	inline bool
	data   []byte
}

// NewFile stats path and returns a result for it.
func NewFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	f := &File{path: path, size: info.Size(), modTime: info.ModTime()}
	if f.size <= InlineLimit {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f.inline = true
		f.data = data
		f.size = int64(len(data))
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// HasData reports whether the file was non-empty when it was opened.
func (f *File) HasData() bool { return f.size > 0 }

// Bytes returns the file contents.
func (f *File) Bytes() ([]byte, error) {
	if f.inline {
		return f.data, nil
	}
	return os.ReadFile(f.path)
}

// Reader streams the file contents.
func (f *File) Reader() (io.ReadCloser, error) {
	if f.inline {
		return io.NopCloser(bytes.NewReader(f.data)), nil
	}
	return os.Open(f.path)
}

// LastModified returns the file modification time.
func (f *File) LastModified() (time.Time, bool) { return f.modTime, true }

// Err always returns nil.
func (f *File) Err() error { return nil }

// Failure is a result with no data and a captured error.
type Failure struct {
	err error
}

// NewFailure wraps the cause of a failed retrieval.
func NewFailure(err error) *Failure {
	return &Failure{err: err}
}

// HasData always returns false.
func (f *Failure) HasData() bool { return false }

// Bytes returns the captured error.
func (f *Failure) Bytes() ([]byte, error) { return nil, f.err }

// Reader returns the captured error.
func (f *Failure) Reader() (io.ReadCloser, error) { return nil, f.err }

// LastModified is never known for a failure.
func (f *Failure) LastModified() (time.Time, bool) { return time.Time{}, false }

// Err returns the captured error.
func (f *Failure) Err() error { return f.err }

type notModified struct{}

// NotModified returns the result of a conditional fetch whose resource has not
// changed since the precondition: no data and no error.
func NotModified() Result { return notModified{} }

// IsNotModified reports whether r came from NotModified.
func IsNotModified(r Result) bool {
	_, ok := r.(notModified)
	return ok
}

func (notModified) HasData() bool { return false }
func (notModified) Bytes() ([]byte, error) { return nil, nil }
func (notModified) Reader() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(nil)), nil }
func (notModified) LastModified() (time.Time, bool) { return time.Time{}, false }
func (notModified) Err() error { return nil }
