package fsutil

// File and directory permission constants.
const (
	// FileModeDefault is used for config files (-rw-r--r--).
	FileModeDefault = 0o644
	// FileModeShared is applied to cache entries so any local user can read
	// and refresh them (-rw-rw-rw-, before umask).
	FileModeShared = 0o666

	// DirModeDefault is used for data and config directories (drwxr-xr-x).
	DirModeDefault = 0o755
)
