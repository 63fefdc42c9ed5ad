package cache

import (
	"os"
	"time"

	"github.com/glorpus-work/geofetch/pkg/fsutil"
)

const (
	// LockFileName is the cross-process lock kept beside the cache directory.
	LockFileName = ".geofetch-cache.lock"

	// tempPrefix marks partially written entries.
	tempPrefix = ".tmp-"

	// DefaultLockTimeout bounds how long an operation waits for the file lock.
	DefaultLockTimeout = 30 * time.Second

	lockRetryDelay = 10 * time.Millisecond
)

// CacheDirPerm is the permission mode for the cache directory.
var CacheDirPerm os.FileMode = fsutil.DirModeDefault

// EntryPerm is the permission mode of cache entries.
var EntryPerm os.FileMode = fsutil.FileModeShared
