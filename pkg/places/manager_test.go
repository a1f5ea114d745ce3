package places

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/internal/metrics"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/volumes"
)

func TestNewManagerRequiresMonitor(t *testing.T) {
	_, err := NewManager(Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestSpecialPlaces(t *testing.T) {
	env := newTestEnv(t)
	m := env.manager()

	special := m.GetDefaultPlaces()
	// Download is the home directory and Pictures does not exist.
	assert.Equal(t, []string{"Home", "Documents", "Music"}, names(special))
	assert.Equal(t, "user-home", special[0].Icon().Name)
	assert.Equal(t, "folder-music", special[2].Icon().Name)
	assert.True(t, special[0].Location().Equal(location.NewForPath(env.home)))
	for _, e := range special {
		assert.Equal(t, KindSpecial, e.Kind())
	}
}

func TestSpecialPlacesSymbolic(t *testing.T) {
	env := newTestEnv(t)
	m := env.manager(func(o *Options) { o.UseSymbolicIcons = true })
	assert.Equal(t, "user-home-symbolic", m.GetDefaultPlaces()[0].Icon().Name)
	assert.Equal(t, "drive-harddisk-symbolic", m.GetMounts()[0].Icon().Name)
}

func TestGetAllPlacesExcludesNetwork(t *testing.T) {
	env := newTestEnv(t)
	env.dirs.user = nil
	env.writeBookmarks("sftp://host/b B\n")
	env.monitor.SetMounts(remoteMount("N", "smb://nas/n"))

	m := env.manager()
	require.Len(t, m.GetPlace(KindNetwork), 2)

	all := m.GetAllPlaces()
	assert.Equal(t, []string{"Home", "B", "Computer"}, names(all))
	assert.Equal(t, []Kind{KindSpecial, KindBookmarks, KindDevices}, []Kind{all[0].Kind(), all[1].Kind(), all[2].Kind()})

	snap := m.Snapshot()
	assert.Equal(t, Views(all), snap.All())
	assert.Equal(t, Views(m.GetPlace(KindNetwork)), snap.List(KindNetwork))
}

func TestQueryAccessors(t *testing.T) {
	env := newTestEnv(t)
	m := env.manager()

	assert.Equal(t, m.GetPlace(KindSpecial), m.GetDefaultPlaces())
	assert.Equal(t, m.GetPlace(KindBookmarks), m.GetBookmarks())
	assert.Equal(t, m.GetPlace(KindDevices), m.GetMounts())
	assert.Nil(t, m.GetPlace(Kind(42)))
}

func TestListsAreReplacedBeforeEvents(t *testing.T) {
	env := newTestEnv(t)
	m := env.manager()
	before := m.GetMounts()

	var seenDevices, seenNetwork []string
	m.Subscribe(DevicesUpdated, func() { seenDevices = names(m.GetMounts()) })
	m.Subscribe(NetworkUpdated, func() { seenNetwork = names(m.GetPlace(KindNetwork)) })

	env.monitor.SetMounts(nativeMount("Stick", "/media/stick"), remoteMount("Share", "smb://nas/share"))
	env.monitor.Emit(volumes.MountAdded)

	assert.Equal(t, []string{"Computer", "Stick"}, seenDevices)
	assert.Equal(t, []string{"Browse network", "Share"}, seenNetwork)
	assert.Equal(t, []string{"Computer"}, names(before), "earlier slices are not modified")
}

func TestEventOrder(t *testing.T) {
	env := newTestEnv(t)
	m := env.manager()

	var order []Event
	for _, e := range Events {
		e := e
		m.Subscribe(e, func() { order = append(order, e) })
	}
	env.monitor.Emit(volumes.DriveConnected)
	assert.Equal(t, []Event{DevicesUpdated, NetworkUpdated}, order)
}

func TestUnsubscribe(t *testing.T) {
	env := newTestEnv(t)
	m := env.manager()

	calls := 0
	id := m.Subscribe(DevicesUpdated, func() { calls++ })
	env.monitor.Emit(volumes.VolumeAdded)
	m.Unsubscribe(id)
	m.Unsubscribe(id)
	env.monitor.Emit(volumes.VolumeAdded)
	assert.Equal(t, 1, calls)
}

func TestDestroyStopsUpdates(t *testing.T) {
	env := newTestEnv(t)
	env.writeBookmarks("")
	m := env.manager()

	calls := 0
	for _, e := range Events {
		m.Subscribe(e, func() { calls++ })
	}
	m.Destroy()
	assert.Zero(t, env.monitor.HandlerCount())

	env.monitor.Emit(volumes.MountAdded)
	env.watch.fire()
	env.sched.Advance(DefaultDebounce)
	assert.Zero(t, calls)
}

func TestLookup(t *testing.T) {
	env := newTestEnv(t)
	env.writeBookmarks("sftp://host/share Share\n")
	m := env.manager()

	e, err := m.Lookup("documents")
	require.NoError(t, err)
	assert.Equal(t, "Documents", e.Name())

	e, err = m.Lookup("SFTP://host/share/")
	require.NoError(t, err)
	assert.Equal(t, "Share", e.Name())

	e, err = m.Lookup(filepath.Join(env.home, "Music"))
	require.NoError(t, err)
	assert.Equal(t, "Music", e.Name())

	e, err = m.Lookup("Browse network")
	require.NoError(t, err)
	assert.Equal(t, KindNetwork, e.Kind())

	_, err = m.Lookup("Nowhere")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	_, err = m.Lookup("  ")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestManagerLaunchRecordsMetrics(t *testing.T) {
	env := newTestEnv(t)
	reg := metrics.New()
	m := env.manager(func(o *Options) { o.Metrics = reg })

	launcher := &fakeLauncher{}
	require.NoError(t, m.Launch(context.Background(), "Home", 0, launcher, &recordingNotifier{}))
	assert.Equal(t, 1, launcher.opened)

	err := m.Launch(context.Background(), "Nowhere", 0, launcher, &recordingNotifier{})
	assert.Error(t, err)
	assert.Equal(t, 1, launcher.opened)

	families, err := reg.Registry.Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["places_launches_total"])
	assert.True(t, found["places_mount_rebuilds_total"])
	assert.True(t, found["places_entries"])
}

func TestBusDirect(t *testing.T) {
	var bus Bus
	var got []string
	a := bus.Subscribe(BookmarksUpdated, func() { got = append(got, "a") })
	bus.Subscribe(BookmarksUpdated, func() { got = append(got, "b") })
	bus.Subscribe(DevicesUpdated, func() { got = append(got, "x") })

	bus.Publish(BookmarksUpdated)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.True(t, bus.Unsubscribe(a))
	assert.False(t, bus.Unsubscribe(a))
	assert.Equal(t, 2, bus.Len())
	assert.Equal(t, KindNetwork, NetworkUpdated.Kind())
	assert.Equal(t, "bookmarks-updated", BookmarksUpdated.String())
}
