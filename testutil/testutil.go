// Package testutil holds fixtures shared by the places test suites.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// IsolateHome points HOME, PLACES_HOME and the XDG variables at a fresh
// temporary directory and returns it. Logging is quietened.
func IsolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PLACES_HOME", filepath.Join(home, "places"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(home, "run"))
	t.Setenv("PLACES_LOG_LEVEL", "error")
	return home
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// Mkdir creates dir (and parents) under root and returns its path.
func Mkdir(t *testing.T, root string, rel ...string) string {
	t.Helper()
	p := filepath.Join(append([]string{root}, rel...)...)
	require.NoError(t, os.MkdirAll(p, 0755))
	return p
}

// Bookmarks writes a GTK bookmarks file with one "file://<dir> <name>"
// line per pair and returns its path.
func Bookmarks(t *testing.T, path string, pairs ...string) string {
	t.Helper()
	require.True(t, len(pairs)%2 == 0, "bookmarks need dir/name pairs")
	var content string
	for i := 0; i < len(pairs); i += 2 {
		line := "file://" + pairs[i]
		if pairs[i+1] != "" {
			line += " " + pairs[i+1]
		}
		content += line + "\n"
	}
	return WriteFile(t, path, content)
}
