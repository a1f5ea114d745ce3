package places

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/mainloop"
	"github.com/grovetools/places/pkg/paths"
	"github.com/grovetools/places/pkg/volumes"
)

type testDirs struct {
	home string
	user map[paths.UserDir]string
}

func (d testDirs) Home() string                   { return d.home }
func (d testDirs) UserDir(u paths.UserDir) string { return d.user[u] }

// fakeWatch captures the change callback so tests can fire it by hand.
type fakeWatch struct {
	files    []string
	onChange func(string)
	closed   int
}

func (w *fakeWatch) watch(files []string, onChange func(string)) (io.Closer, error) {
	w.files = files
	w.onChange = onChange
	return w, nil
}

func (w *fakeWatch) Close() error {
	w.closed++
	return nil
}

func (w *fakeWatch) fire() {
	w.onChange(w.files[0])
}

type testEnv struct {
	t         *testing.T
	home      string
	dirs      testDirs
	monitor   *volumes.Fake
	sched     *mainloop.Manual
	watch     *fakeWatch
	bookmarks string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	for _, d := range []string{"Documents", "Music"} {
		require.NoError(t, os.Mkdir(filepath.Join(home, d), 0755))
	}
	return &testEnv{
		t:    t,
		home: home,
		dirs: testDirs{home: home, user: map[paths.UserDir]string{
			paths.UserDirDocuments: filepath.Join(home, "Documents"),
			paths.UserDirDownload:  home,
			paths.UserDirMusic:     filepath.Join(home, "Music"),
			paths.UserDirPictures:  filepath.Join(home, "Pictures"),
		}},
		monitor:   volumes.NewFake(),
		sched:     mainloop.NewManual(),
		watch:     &fakeWatch{},
		bookmarks: filepath.Join(home, ".config", "gtk-3.0", "bookmarks"),
	}
}

func (e *testEnv) mkdir(rel string) string {
	e.t.Helper()
	p := filepath.Join(e.home, rel)
	require.NoError(e.t, os.MkdirAll(p, 0755))
	return p
}

func (e *testEnv) writeBookmarks(content string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(filepath.Dir(e.bookmarks), 0755))
	require.NoError(e.t, os.WriteFile(e.bookmarks, []byte(content), 0644))
}

func (e *testEnv) options() Options {
	return Options{
		Monitor:       e.monitor,
		Scheduler:     e.sched,
		Dirs:          e.dirs,
		BookmarkFiles: []string{e.bookmarks, filepath.Join(e.home, ".gtk-bookmarks")},
		Watch:         e.watch.watch,
	}
}

func (e *testEnv) manager(mutate ...func(*Options)) *Manager {
	e.t.Helper()
	opts := e.options()
	for _, fn := range mutate {
		fn(&opts)
	}
	m, err := NewManager(opts)
	require.NoError(e.t, err)
	e.t.Cleanup(m.Destroy)
	return m
}

func names(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name()
	}
	return out
}

func uris(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Location().URI()
	}
	return out
}

func nativeMount(name, root string) *volumes.Mount {
	return &volumes.Mount{
		Name:         name,
		Root:         location.NewForPath(root),
		Icon:         location.Themed("drive-removable-media"),
		SymbolicIcon: location.Themed("drive-removable-media-symbolic"),
	}
}

func remoteMount(name, uri string) *volumes.Mount {
	return &volumes.Mount{
		Name:         name,
		Root:         location.NewForURI(uri),
		Icon:         location.Themed("folder-remote"),
		SymbolicIcon: location.Themed("folder-remote-symbolic"),
	}
}

// fakeLauncher scripts Open results in order.
type fakeLauncher struct {
	openErrs []error
	mountErr error
	// blockMount makes Mount wait for its context to end.
	blockMount bool
	opened     int
	mounted    int
}

func (l *fakeLauncher) Open(_ context.Context, _ location.Location, _ uint32) error {
	l.opened++
	if len(l.openErrs) == 0 {
		return nil
	}
	err := l.openErrs[0]
	l.openErrs = l.openErrs[1:]
	return err
}

func (l *fakeLauncher) Mount(ctx context.Context, _ location.Location) error {
	l.mounted++
	if l.blockMount {
		<-ctx.Done()
		return ctx.Err()
	}
	return l.mountErr
}

type recordingNotifier struct {
	titles   []string
	messages []string
}

func (n *recordingNotifier) NotifyError(title, message string) {
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
}

var errNotMounted = errors.NotMounted("smb://nas/media")
