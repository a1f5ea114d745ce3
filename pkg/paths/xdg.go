// Package paths provides XDG-compliant path resolution for places.
//
// Resolution order:
// 1. PLACES_HOME (portable root) → $PLACES_HOME/{config,state,run}
// 2. XDG env vars → $XDG_*_HOME/places
// 3. Platform defaults → ~/.config/places, ~/.local/state/places, etc.
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir := HomeDir(); homeDir != "" {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir := HomeDir(); homeDir != "" {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// HomeDir returns the user's home directory, or "" if it cannot be determined.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// ConfigDir returns the places configuration directory.
// Used for places.yml / places.toml.
func ConfigDir() string {
	if placesHome := os.Getenv("PLACES_HOME"); placesHome != "" {
		return filepath.Join(placesHome, "config")
	}
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "places")
}

// StateDir returns the places state directory.
// Used for logs and the daemon pid file.
func StateDir() string {
	if placesHome := os.Getenv("PLACES_HOME"); placesHome != "" {
		return filepath.Join(placesHome, "state")
	}
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "places")
}

// RuntimeDir returns the places runtime directory for sockets.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir.
func RuntimeDir() string {
	if placesHome := os.Getenv("PLACES_HOME"); placesHome != "" {
		return filepath.Join(placesHome, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "places")
	}
	return StateDir()
}

// SocketPath returns the path to the places daemon unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "placesd.sock")
}

// PidFilePath returns the path to the places daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "placesd.pid")
}

// GvfsMountDir returns the directory where gvfs exposes FUSE views of its
// virtual mounts, or "" when XDG_RUNTIME_DIR is unset.
func GvfsMountDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "gvfs")
	}
	return ""
}

// BookmarkFileCandidates returns the bookmarks file locations in lookup order:
// the GTK 3 file first, then the legacy dotfile in the home directory.
func BookmarkFileCandidates() []string {
	var candidates []string
	if base := getConfigHome(); base != "" {
		candidates = append(candidates, filepath.Join(base, "gtk-3.0", "bookmarks"))
	}
	if home := HomeDir(); home != "" {
		candidates = append(candidates, filepath.Join(home, ".gtk-bookmarks"))
	}
	return candidates
}

// EnsureDirs creates the places directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), RuntimeDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
