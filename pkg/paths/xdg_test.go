package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirsHonourPlacesHome(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PLACES_HOME", root)

	assert.Equal(t, filepath.Join(root, "config"), ConfigDir())
	assert.Equal(t, filepath.Join(root, "state"), StateDir())
	assert.Equal(t, filepath.Join(root, "run", "placesd.sock"), SocketPath())
	assert.Equal(t, filepath.Join(root, "state", "placesd.pid"), PidFilePath())
}

func TestDirsHonourXDG(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PLACES_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(root, "run"))

	assert.Equal(t, filepath.Join(root, "cfg", "places"), ConfigDir())
	assert.Equal(t, filepath.Join(root, "state", "places"), StateDir())
	assert.Equal(t, filepath.Join(root, "run", "places"), RuntimeDir())
	assert.Equal(t, filepath.Join(root, "run", "gvfs"), GvfsMountDir())
}

func TestBookmarkFileCandidatesOrder(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "cfg"))

	assert.Equal(t, []string{
		filepath.Join(root, "cfg", "gtk-3.0", "bookmarks"),
		filepath.Join(root, "home", ".gtk-bookmarks"),
	}, BookmarkFileCandidates())
}

func TestSystemDirsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, home, SystemDirs{}.Home())
	assert.Empty(t, SystemDirs{}.UserDir(UserDir("templates")))
}
