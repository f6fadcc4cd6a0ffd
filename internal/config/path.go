package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDir returns the default data directory for pebble/sqlite stores.
// XDG_DATA_HOME wins when set; root on Linux uses /var/lib/shly; otherwise the
// per-user application data location of the host OS, falling back to ~/.shly
// (./.shly without a home directory).
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "shly")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./.shly"
	}

	switch runtime.GOOS {
	case "linux":
		if os.Geteuid() == 0 && isDir("/var/lib") {
			return "/var/lib/shly"
		}
	case "darwin":
		if isDir(filepath.Join(homeDir, "Library")) {
			return filepath.Join(homeDir, "Library", "Application Support", "Shly")
		}
	case "windows":
		if isDir(filepath.Join(homeDir, "AppData")) {
			return filepath.Join(homeDir, "AppData", "Local", "Shly")
		}
	}
	return filepath.Join(homeDir, ".shly")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
