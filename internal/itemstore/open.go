package itemstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MagicGod/shly/internal/config"
	pebblestore "github.com/MagicGod/shly/internal/storage/pebble"
)

// Open builds the backend selected by cfg.Store.
func Open(cfg config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Store.File), nil
	case config.BackendPebble:
		return OpenPebbleStore(cfg.StorePath(), pebblestore.FsyncModeAlways)
	case config.BackendSQLite:
		path := cfg.StorePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
