// Package fs provides file-system backed helpers: a response cache for model
// endpoints and per-run scratch directories.
package fs

import (
	"os"
	"path/filepath"
)

// DefaultCacheDir returns the default cache directory for devq.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/devq,
// or system temp directory if home is unavailable.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "devq")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "devq")
	}
	return filepath.Join(home, ".cache", "devq")
}
