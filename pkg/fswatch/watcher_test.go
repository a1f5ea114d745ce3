package fswatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func TestWatchReportsWritesToMissingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bookmarks")
	changes := make(chan string, 16)

	w, err := Watch([]string{file}, func(p string) { changes <- p })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(file, []byte("file:///tmp\n"), 0644))
	waitFor(t, changes, file)
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bookmarks")
	changes := make(chan string, 16)

	w, err := Watch([]string{file}, func(p string) { changes <- p })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0644))
	select {
	case got := <-changes:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchFollowsSymlinkTarget(t *testing.T) {
	linkDir := t.TempDir()
	targetDir := t.TempDir()
	target := filepath.Join(targetDir, "real-bookmarks")
	require.NoError(t, os.WriteFile(target, []byte(""), 0644))
	link := filepath.Join(linkDir, "bookmarks")
	require.NoError(t, os.Symlink(target, link))

	changes := make(chan string, 16)
	w, err := Watch([]string{link}, func(p string) { changes <- p })
	require.NoError(t, err)
	defer w.Close()

	resolved, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(resolved, []byte("file:///srv\n"), 0644))
	waitFor(t, changes, link)
}

func TestWatchFailsWhenNoDirectoryExists(t *testing.T) {
	_, err := Watch([]string{"/nonexistent/places/bookmarks"}, func(string) {})
	assert.Error(t, err)
}

func TestNoChangesReportedAfterClose(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bookmarks")
	changes := make(chan string, 16)
	w, err := Watch([]string{file}, func(p string) { changes <- p })
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))
	waitFor(t, changes, file)
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Close())

	for len(changes) > 0 {
		<-changes
	}
	require.NoError(t, os.WriteFile(file, []byte("b\n"), 0644))
	select {
	case p := <-changes:
		t.Fatalf("change reported after Close: %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := Watch([]string{filepath.Join(t.TempDir(), "f")}, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
