// Package archive creates and extracts tar.gz snapshots of a flat directory.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/glorpus-work/geofetch/pkg/fsutil"
)

// Filter decides whether an entry, named relative to the snapshot root,
// belongs in a snapshot.
type Filter func(name string) bool

// Manager handles snapshot creation and extraction.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// Create writes a tar.gz of the regular files in sourceDir to w and returns
// how many files were archived. Entries rejected by keep are left out; a nil
// keep includes everything.
func (am *Manager) Create(ctx context.Context, sourceDir string, w io.Writer, keep Filter) (int, error) {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return 0, fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	diskFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read files from disk: %w", err)
	}

	files := make([]archives.FileInfo, 0, len(diskFiles))
	for _, f := range diskFiles {
		if !f.Mode().IsRegular() {
			continue
		}
		name := strings.TrimPrefix(filepath.ToSlash(f.NameInArchive), "/")
		if keep != nil && !keep(name) {
			continue
		}
		files = append(files, f)
	}

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
	if err := format.Archive(ctx, w, files); err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	return len(files), nil
}

// CreateFile is Create into a new file at archivePath.
func (am *Manager) CreateFile(ctx context.Context, sourceDir, archivePath string, keep Filter) (int, error) {
	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return 0, err
	}
	file, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	n, err := am.Create(ctx, sourceDir, file, keep)
	if syncErr := file.Sync(); err == nil && syncErr != nil {
		err = syncErr
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(archivePath)
		return 0, err
	}
	return n, nil
}

// ExtractAll extracts the regular files of an archive into destDir and
// returns how many were written. Extracted files get mode perm and keep their
// archived modification time. Symlinks and entries rejected by keep are skipped.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string, perm os.FileMode, keep Filter) (int, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := fsutil.EnsureDir(destDir); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	count := 0
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == "." || d.IsDir() {
			return nil
		}
		if keep != nil && !keep(path) {
			return nil
		}
		written, err := am.extractEntry(fsys, path, destDir, d, perm)
		if written {
			count++
		}
		return err
	}

	if err := fs.WalkDir(fsys, ".", walkFn); err != nil {
		return count, err
	}
	return count, nil
}

// extractEntry writes a single regular archive entry below destDir.
func (am *Manager) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry, perm os.FileMode) (bool, error) {
	info, err := d.Info()
	if err != nil {
		return false, fmt.Errorf("failed to get file info for %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	srcFile, err := fsys.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	data, err := io.ReadAll(srcFile)
	if err != nil {
		return false, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	targetPath := filepath.Join(destDir, filepath.FromSlash(path))
	if err := fsutil.WriteFileAtomic(targetPath, data, perm, info.ModTime()); err != nil {
		return false, fmt.Errorf("failed to write file %s: %w", targetPath, err)
	}
	return true, nil
}
