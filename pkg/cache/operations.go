package cache

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/glorpus-work/geofetch/internal/logger"
)

// Operation renders cache maintenance results for people.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean empties the cache and describes what was freed.
func (op *Operation) Clean() (string, error) {
	logger.Debug("Cleaning cache", logger.Fields{"directory": op.manager.GetDirectory()})

	res, err := op.manager.Clean()
	if err != nil {
		return "", err
	}

	if res.FilesRemoved == 0 {
		return "No files were removed from the cache.", nil
	}
	return fmt.Sprintf("Successfully cleaned cache. Removed %s, freed %s of disk space.",
		pluralFiles(res.FilesRemoved), humanize.IBytes(uint64(res.TotalFreed))), nil
}

// GetInfo describes the cache contents.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Cache Information:
  Directory:    %s
  Total Size:   %s
  Entries:      %d
  Newest Entry: %s
  Oldest Entry: %s`,
		info.Directory,
		humanize.IBytes(uint64(info.TotalSize)),
		info.Files,
		formatTime(info.Newest),
		formatTime(info.Oldest),
	), nil
}

// GetDirectory returns the cache directory path.
func (op *Operation) GetDirectory() string {
	return op.manager.GetDirectory()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", t.Format(time.RFC1123), humanize.Time(t))
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
