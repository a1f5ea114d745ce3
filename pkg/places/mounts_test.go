package places

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/mainloop"
	"github.com/grovetools/places/pkg/volumes"
)

// queuedScheduler holds posted callbacks until drain is called.
type queuedScheduler struct {
	*mainloop.Manual
	queue []func()
}

func (s *queuedScheduler) Post(fn func()) {
	s.queue = append(s.queue, fn)
}

func (s *queuedScheduler) drain() {
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
	}
}

type capturedMounts struct {
	devices, network []*Entry
	deliveries       int
}

func (c *capturedMounts) deliver(devices, network []*Entry) {
	c.devices, c.network = devices, network
	c.deliveries++
}

func newAggregator(t *testing.T, monitor volumes.Monitor, sched mainloop.Scheduler, symbolic bool) (*MountAggregator, *capturedMounts) {
	t.Helper()
	got := &capturedMounts{}
	f := NewFactory(location.NewFileService(nil), symbolic)
	a := NewMountAggregator(monitor, f, sched, got.deliver, logrus.NewEntry(logrus.New()), nil)
	t.Cleanup(a.Close)
	return a, got
}

func populatedMonitor() *volumes.Fake {
	monitor := volumes.NewFake()

	drive := &volumes.Drive{ID: "/dev/sdb", Name: "SanDisk"}
	stick := &volumes.Volume{ID: "stick", Name: "STICK", Class: volumes.ClassDevice, Drive: drive}
	stick.Mount = nativeMount("STICK", "/run/media/u/STICK")
	stick.Mount.Volume = stick
	locked := &volumes.Volume{ID: "locked", Name: "Locked", Class: volumes.ClassDevice, Drive: drive}
	// A network-class volume on a drive stays network even when its mount
	// root is native.
	nfsOnDrive := &volumes.Volume{ID: "nfs-drive", Name: "NAS", Class: "network-nfs", Drive: drive}
	nfsOnDrive.Mount = nativeMount("NAS", "/mnt/nas")
	nfsOnDrive.Mount.Volume = nfsOnDrive
	drive.Volumes = []*volumes.Volume{stick, locked, nfsOnDrive}

	orphan := &volumes.Volume{ID: "orphan", Name: "Backup", Class: volumes.ClassDevice}
	orphan.Mount = nativeMount("Backup", "/mnt/backup")
	orphan.Mount.Volume = orphan
	share := &volumes.Volume{ID: "share", Name: "photos on nas", Class: volumes.ClassNetwork}
	share.Mount = nativeMount("photos on nas", "/mnt/photos")
	share.Mount.Volume = share
	unmountedOrphan := &volumes.Volume{ID: "cd", Name: "CD", Class: volumes.ClassDevice}

	loose := nativeMount("remote", "/home/u/remote")
	sftp := remoteMount("example.com", "sftp://bob@example.com/")
	shadowed := nativeMount("iso", "/mnt/iso")
	shadowed.Shadowed = true

	monitor.SetDrives(drive)
	monitor.SetVolumes(stick, locked, nfsOnDrive, orphan, share, unmountedOrphan)
	monitor.SetMounts(stick.Mount, nfsOnDrive.Mount, orphan.Mount, share.Mount, loose, sftp, shadowed)
	return monitor
}

func TestRebuildClassification(t *testing.T) {
	_, got := newAggregator(t, populatedMonitor(), mainloop.NewManual(), false)

	assert.Equal(t, []string{"Computer", "STICK", "Backup", "remote"}, names(got.devices))
	assert.Equal(t, []string{"Browse network", "NAS", "photos on nas", "example.com"}, names(got.network))

	assert.Equal(t, "file:///", got.devices[0].Location().URI())
	assert.Equal(t, "drive-harddisk", got.devices[0].Icon().Name)
	assert.Equal(t, "network:///", got.network[0].Location().URI())
	assert.Equal(t, "network-workgroup", got.network[0].Icon().Name)

	assert.True(t, got.network[1].Location().IsNative(), "network class wins over native root")
	assert.Equal(t, VariantDevice, got.devices[1].Variant())
	assert.Equal(t, "drive-removable-media", got.devices[1].Icon().Name)
}

func TestRebuildSymbolicIcons(t *testing.T) {
	_, got := newAggregator(t, populatedMonitor(), mainloop.NewManual(), true)

	assert.Equal(t, "drive-harddisk-symbolic", got.devices[0].Icon().Name)
	assert.Equal(t, "network-workgroup-symbolic", got.network[0].Icon().Name)
	assert.Equal(t, "drive-removable-media-symbolic", got.devices[1].Icon().Name)
}

func TestRebuildOnlyFixedEntriesWhenEmpty(t *testing.T) {
	_, got := newAggregator(t, volumes.NewFake(), mainloop.NewManual(), false)
	assert.Equal(t, []string{"Computer"}, names(got.devices))
	assert.Equal(t, []string{"Browse network"}, names(got.network))
}

func TestRebuildIsIdempotent(t *testing.T) {
	a, got := newAggregator(t, populatedMonitor(), mainloop.NewManual(), false)
	first := [2][]EntryView{Views(got.devices), Views(got.network)}

	a.Rebuild()
	second := [2][]EntryView{Views(got.devices), Views(got.network)}

	assert.Equal(t, first, second)
	assert.Equal(t, 2, got.deliveries)
}

func TestEveryMonitorEventRebuilds(t *testing.T) {
	monitor := volumes.NewFake()
	_, got := newAggregator(t, monitor, mainloop.NewManual(), false)
	require.Equal(t, 9, monitor.HandlerCount())

	for i, kind := range volumes.AllEvents {
		monitor.Emit(kind)
		assert.Equal(t, i+2, got.deliveries, "event %s", kind)
	}

	monitor.SetMounts(remoteMount("ftp.example.org", "ftp://ftp.example.org/"))
	monitor.Emit(volumes.MountAdded)
	assert.Equal(t, []string{"Browse network", "ftp.example.org"}, names(got.network))
}

func TestCloseDisconnectsAndSuppressesQueuedRebuilds(t *testing.T) {
	monitor := populatedMonitor()
	sched := &queuedScheduler{Manual: mainloop.NewManual()}
	a, got := newAggregator(t, monitor, sched, false)
	require.Equal(t, 1, got.deliveries)

	monitor.Emit(volumes.MountRemoved)
	require.Len(t, sched.queue, 1)

	a.Close()
	a.Close()
	assert.Zero(t, monitor.HandlerCount())

	sched.drain()
	assert.Equal(t, 1, got.deliveries)
}
