package places

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/mainloop"
)

func TestPlaceExplicitNameAndIcon(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	e := f.Place(KindDevices, location.NewForPath("/"), "Computer", "drive-harddisk")

	assert.Equal(t, "Computer", e.Name())
	assert.Equal(t, "drive-harddisk", e.Icon().Name)
	assert.Equal(t, VariantGeneric, e.Variant())
	assert.False(t, e.IsRemovable())
	assert.Nil(t, e.Mount())
}

func TestPlaceDerivesNameAndIcon(t *testing.T) {
	env := newTestEnv(t)
	docs := env.dirs.UserDir("documents")
	f := NewFactory(location.NewFileService(SpecialIcons(env.dirs)), true)

	e := f.Place(KindSpecial, location.NewForPath(docs), "", "")
	assert.Equal(t, "Documents", e.Name())
	assert.Equal(t, "folder-documents-symbolic", e.Icon().Name)
}

func TestPlaceFallbacks(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	missing := location.NewForPath("/nonexistent/places/Projects")
	remote := location.NewForURI("sftp://host/srv/share")

	tests := []struct {
		kind Kind
		loc  location.Location
		icon string
		name string
	}{
		{KindNetwork, missing, "folder-remote-symbolic", "Projects"},
		{KindDevices, missing, "drive-harddisk-symbolic", "Projects"},
		{KindBookmarks, missing, "folder-symbolic", "Projects"},
		{KindSpecial, missing, "folder-symbolic", "Projects"},
		{KindBookmarks, remote, "folder-remote-symbolic", "share"},
		{KindSpecial, remote, "folder-remote-symbolic", "share"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.kind, tt.loc), func(t *testing.T) {
			e := f.Place(tt.kind, tt.loc, "", "")
			assert.Equal(t, tt.icon, e.Icon().Name)
			assert.Equal(t, tt.name, e.Name())
		})
	}
}

func TestDeviceUsesMountIcon(t *testing.T) {
	mount := nativeMount("USB Stick", "/run/media/u/STICK")

	plain := NewFactory(location.NewFileService(nil), false).Device(KindDevices, mount)
	assert.Equal(t, "drive-removable-media", plain.Icon().Name)
	assert.Equal(t, "USB Stick", plain.Name())
	assert.Equal(t, VariantDevice, plain.Variant())
	assert.Same(t, mount, plain.Mount())

	symbolic := NewFactory(location.NewFileService(nil), true).Device(KindDevices, mount)
	assert.Equal(t, "drive-removable-media-symbolic", symbolic.Icon().Name)
	assert.True(t, plain.Equal(symbolic), "identity is the mount root")
	assert.False(t, symbolic.IsRemovable())
}

func TestEntryEqualityUsesResolvedLocation(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	a := f.Place(KindBookmarks, location.NewForURI("file:///tmp/a%20b"), "x", "folder")
	b := f.Place(KindBookmarks, location.NewForPath("/tmp/a b/"), "y", "folder")
	c := f.Place(KindBookmarks, location.NewForPath("/tmp/c"), "x", "folder")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestLaunchRetriesAfterMount(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	e := f.Place(KindNetwork, location.NewForURI("smb://nas/media"), "media", "")
	launcher := &fakeLauncher{openErrs: []error{errNotMounted}}
	notifier := &recordingNotifier{}

	require.NoError(t, e.Launch(context.Background(), 7, launcher, notifier))
	assert.Equal(t, 2, launcher.opened)
	assert.Equal(t, 1, launcher.mounted)
	assert.Empty(t, notifier.titles)
}

func TestLaunchReportsFailure(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	e := f.Place(KindSpecial, location.NewForPath("/tmp"), "Temp", "")
	cause := fmt.Errorf("no handler for inode/directory")
	launcher := &fakeLauncher{openErrs: []error{errors.LaunchFailed("file:///tmp", cause)}}
	notifier := &recordingNotifier{}

	err := e.Launch(context.Background(), 0, launcher, notifier)
	require.Error(t, err)
	assert.Zero(t, launcher.mounted)
	assert.Equal(t, []string{`Failed to launch "Temp"`}, notifier.titles)
	assert.Equal(t, []string{"no handler for inode/directory"}, notifier.messages)
}

func TestLaunchReportsMountFailure(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	e := f.Place(KindNetwork, location.NewForURI("smb://nas/media"), "media", "")
	launcher := &fakeLauncher{
		openErrs: []error{errNotMounted},
		mountErr: errors.MountFailed("smb://nas/media", fmt.Errorf("access denied")),
	}
	notifier := &recordingNotifier{}

	err := e.Launch(context.Background(), 0, launcher, notifier)
	assert.True(t, errors.Is(err, errors.ErrCodeMountFailed))
	assert.Equal(t, 1, launcher.opened)
	assert.Equal(t, []string{"access denied"}, notifier.messages)
}

func TestLaunchMountRunsOffTheLoop(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	e := f.Place(KindNetwork, location.NewForURI("smb://nas/media"), "media", "")
	launcher := &fakeLauncher{openErrs: []error{errNotMounted}, blockMount: true}
	notifier := &recordingNotifier{}

	loop := mainloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	launchCtx, stop := context.WithCancel(context.Background())
	result := make(chan error, 1)
	require.True(t, loop.Invoke(func() {
		go func() { result <- e.Launch(launchCtx, 0, launcher, notifier) }()
	}))
	assert.True(t, loop.Invoke(func() {}), "loop keeps running while the mount is pending")

	stop()
	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("Launch did not return after its context ended")
	}
	assert.Equal(t, 1, launcher.mounted)
	assert.Equal(t, 1, launcher.opened, "no retry after a failed mount")
	assert.Equal(t, []string{`Failed to launch "media"`}, notifier.titles)
}

func TestEntryJSON(t *testing.T) {
	f := NewFactory(location.NewFileService(nil), false)
	e := f.Place(KindBookmarks, location.NewForPath("/tmp/my docs"), "Docs", "folder")

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var view EntryView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, EntryView{
		Kind:   KindBookmarks,
		Name:   "Docs",
		URI:    "file:///tmp/my%20docs",
		Path:   "/tmp/my docs",
		Icon:   "folder",
		Native: true,
	}, view)
	assert.Contains(t, string(data), `"kind":"bookmarks"`)
}

func TestKindParsing(t *testing.T) {
	for _, k := range Kinds {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("trash")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
