package fsutil

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppName is the name of the application used in paths
	AppName = "geofetch"
)

// GetDataDir returns the data-file store root for the application.
// On Linux: $XDG_DATA_HOME/geofetch (~/.local/share/geofetch)
// On macOS: ~/Library/Application Support/geofetch
// On Windows: %LOCALAPPDATA%\geofetch
func GetDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// GetConfigDir returns the configuration directory for the application.
func GetConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
