package volumes

import (
	"context"
	"os"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/places/command"
	"github.com/grovetools/places/pkg/location"
)

const lsblkFixture = `{
   "blockdevices": [
      {"name":"nvme0n1", "size":"476.9G", "label":null, "uuid":null, "fstype":null, "mountpoint":null, "type":"disk", "hotplug":false, "rm":false, "model":"Samsung SSD",
         "children": [
            {"name":"nvme0n1p1", "size":"512M", "label":null, "uuid":"AAAA-BBBB", "fstype":"vfat", "mountpoint":"/boot", "type":"part", "hotplug":false, "rm":false, "model":null},
            {"name":"nvme0n1p2", "size":"476.4G", "label":null, "uuid":"root-uuid", "fstype":"ext4", "mountpoint":"/", "type":"part", "hotplug":false, "rm":false, "model":null}
         ]
      },
      {"name":"sda", "size":"58.6G", "label":null, "uuid":null, "fstype":null, "mountpoint":null, "type":"disk", "hotplug":"1", "rm":"1", "model":"SanDisk Ultra",
         "children": [
            {"name":"sda1", "size":"58.6G", "label":"STICK", "uuid":"1234-5678", "fstype":"exfat", "mountpoint":"/run/media/u/STICK", "type":"part", "hotplug":"1", "rm":"1", "model":null},
            {"name":"sda2", "size":"1G", "label":null, "uuid":"luks-uuid", "fstype":"crypto_LUKS", "mountpoint":null, "type":"part", "hotplug":"1", "rm":"1", "model":null,
               "children": [
                  {"name":"luks-sda2", "size":"1G", "label":"SECRET", "uuid":"inner-uuid", "fstype":"ext4", "mountpoint":null, "type":"crypt", "hotplug":false, "rm":false, "model":null}
               ]
            }
         ]
      }
   ]
}`

func fixtureInput(t *testing.T) scanInput {
	t.Helper()
	devices, err := ParseLsblk([]byte(lsblkFixture))
	require.NoError(t, err)
	return scanInput{
		blockDevices: devices,
		partitions: []disk.PartitionStat{
			{Device: "/dev/nvme0n1p2", Mountpoint: "/", Fstype: "ext4"},
			{Device: "/dev/sda1", Mountpoint: "/run/media/u/STICK", Fstype: "exfat"},
			{Device: "nas:/export/photos", Mountpoint: "/mnt/photos", Fstype: "nfs4"},
			{Device: "bob@host:", Mountpoint: "/home/u/remote", Fstype: "fuse.sshfs"},
			{Device: "proc", Mountpoint: "/proc", Fstype: "proc"},
			{Device: "/dev/loop0", Mountpoint: "/mnt/iso", Fstype: "iso9660"},
			{Device: "/dev/loop1", Mountpoint: "/mnt/iso", Fstype: "iso9660"},
		},
		gvfs: []gvfsMount{
			{Dir: "sftp:host=example.com,user=bob", Name: "example.com", Root: location.NewForURI("sftp://bob@example.com/")},
		},
		home:       "/home/u",
		mediaRoots: []string{"/media", "/mnt", "/run/media"},
	}
}

func TestParseLsblkAcceptsStringBooleans(t *testing.T) {
	devices, err := ParseLsblk([]byte(lsblkFixture))
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.False(t, bool(devices[0].Hotplug))
	assert.True(t, bool(devices[1].Hotplug))
	assert.True(t, bool(devices[1].Removable))
	assert.True(t, isSystemDisk(&devices[0]))
	assert.False(t, isSystemDisk(&devices[1]))
}

func TestBuildSnapshot(t *testing.T) {
	snap := buildSnapshot(fixtureInput(t))

	require.Len(t, snap.drives, 1, "internal system disk is not a drive")
	drive := snap.drives[0]
	assert.Equal(t, "SanDisk Ultra", drive.Name)
	require.Len(t, drive.Volumes, 2)

	stick := drive.Volumes[0]
	assert.Equal(t, "STICK", stick.Name)
	assert.Equal(t, "1234-5678", stick.Identifier(IdentifierUUID))
	assert.Equal(t, ClassDevice, stick.Identifier(IdentifierClass))
	require.NotNil(t, stick.Mount)
	assert.Equal(t, "/run/media/u/STICK", stick.Mount.Root.Path())
	assert.Equal(t, "drive-removable-media-symbolic", stick.Mount.SymbolicIcon.Name)

	secret := drive.Volumes[1]
	assert.Equal(t, "SECRET", secret.Name)
	assert.Nil(t, secret.Mount, "locked volume has no mount")

	var nfs *Volume
	for _, v := range snap.volumes {
		if v.Drive == nil {
			nfs = v
		}
	}
	require.NotNil(t, nfs)
	assert.True(t, nfs.IsNetwork())
	assert.Equal(t, "photos on nas", nfs.Name)
	require.NotNil(t, nfs.Mount)
	assert.True(t, nfs.Mount.Root.IsNative())

	roots := map[string]*Mount{}
	for _, m := range snap.mounts {
		if _, dup := roots[m.Root.URI()]; dup {
			continue
		}
		roots[m.Root.URI()] = m
	}
	assert.NotContains(t, roots, "file:///", "root filesystem is never listed")
	assert.NotContains(t, roots, "file:///proc")
	require.Contains(t, roots, "file:///home/u/remote")
	assert.Nil(t, roots["file:///home/u/remote"].Volume)
	require.Contains(t, roots, "sftp://bob@example.com/")
	assert.False(t, roots["sftp://bob@example.com/"].Root.IsNative())

	var iso []*Mount
	for _, m := range snap.mounts {
		if m.Root.Path() == "/mnt/iso" {
			iso = append(iso, m)
		}
	}
	require.Len(t, iso, 2)
	assert.True(t, iso[0].Shadowed, "overmounted mount is shadowed")
	assert.False(t, iso[1].Shadowed)
}

func TestBuildSnapshotIgnorePatterns(t *testing.T) {
	in := fixtureInput(t)
	m, err := NewSystemMonitor(context.Background(), SystemOptions{
		Runner:     command.NewFakeRunner().Missing("lsblk"),
		Partitions: func(context.Context) ([]disk.PartitionStat, error) { return nil, nil },
		Ignore:     []string{"/mnt/iso", "/home/u/*"},
	})
	require.NoError(t, err)
	in.ignore = m.ignore

	for _, mount := range buildSnapshot(in).mounts {
		assert.NotEqual(t, "/mnt/iso", mount.Root.Path())
		assert.NotEqual(t, "/home/u/remote", mount.Root.Path())
	}
}

func TestParseGvfsName(t *testing.T) {
	tests := []struct {
		dir  string
		uri  string
		name string
		ok   bool
	}{
		{"sftp:host=example.com,user=bob", "sftp://bob@example.com/", "example.com", true},
		{"smb-share:server=nas,share=media", "smb://nas/media", "media on nas", true},
		{"ftp:host=ftp.example.org,port=2121", "ftp://ftp.example.org:2121/", "ftp.example.org", true},
		{"trash:", "", "", false},
		{"not-a-mount", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got, ok := parseGvfsName(tt.dir)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.uri, got.Root.URI())
			assert.Equal(t, tt.name, got.Name)
		})
	}
}

func TestEventsBetween(t *testing.T) {
	full := buildSnapshot(fixtureInput(t))

	assert.ElementsMatch(t,
		[]EventKind{MountAdded, VolumeAdded, DriveConnected},
		eventsBetween(&snapshot{}, full))
	assert.Empty(t, eventsBetween(full, buildSnapshot(fixtureInput(t))))
	assert.ElementsMatch(t,
		[]EventKind{MountRemoved, VolumeRemoved, DriveDisconnected},
		eventsBetween(full, &snapshot{}))

	in := fixtureInput(t)
	in.partitions = in.partitions[:1]
	in.blockDevices[1].Children[0].Mountpoint = ""
	in.gvfs = nil
	unmounted := buildSnapshot(in)
	events := eventsBetween(full, unmounted)
	assert.Contains(t, events, MountRemoved)
	assert.Contains(t, events, VolumeChanged, "stick lost its mount")
	assert.Contains(t, events, VolumeRemoved, "nfs volume is gone")
	assert.NotContains(t, events, DriveDisconnected)
}

func TestSystemMonitorRefreshEmits(t *testing.T) {
	gvfs := t.TempDir()
	runner := command.NewFakeRunner().On("lsblk", command.Result{Stdout: []byte(`{"blockdevices":[]}`)}, nil)
	var parts []disk.PartitionStat

	m, err := NewSystemMonitor(context.Background(), SystemOptions{
		Runner:     runner,
		Partitions: func(context.Context) ([]disk.PartitionStat, error) { return parts, nil },
		GvfsDir:    gvfs,
		HomeDir:    "/home/u",
		MediaRoots: []string{"/media"},
	})
	require.NoError(t, err)
	assert.Empty(t, m.Mounts())

	var got []EventKind
	for _, kind := range AllEvents {
		kind := kind
		m.Connect(kind, func() { got = append(got, kind) })
	}

	require.NoError(t, os.Mkdir(filepath.Join(gvfs, "sftp:host=h,user=u"), 0755))
	parts = []disk.PartitionStat{{Device: "/dev/sdb1", Mountpoint: "/media/disk", Fstype: "ext4"}}
	require.NoError(t, m.Refresh(context.Background()))

	assert.Equal(t, []EventKind{MountAdded}, got)
	require.Len(t, m.Mounts(), 2)
	assert.Empty(t, m.ConnectedDrives())
	assert.Empty(t, m.Volumes())

	got = nil
	require.NoError(t, m.Refresh(context.Background()))
	assert.Empty(t, got, "no change means no events")
}

func TestStartCoalescesMountHints(t *testing.T) {
	media := t.TempDir()
	runner := command.NewFakeRunner().On("lsblk", command.Result{Stdout: []byte(`{"blockdevices":[]}`)}, nil)
	var scans atomic.Int32

	m, err := NewSystemMonitor(context.Background(), SystemOptions{
		Runner: runner,
		Partitions: func(context.Context) ([]disk.PartitionStat, error) {
			scans.Add(1)
			return nil, nil
		},
		PollInterval: time.Hour,
		HintDelay:    150 * time.Millisecond,
		MediaRoots:   []string{media},
		GvfsDir:      filepath.Join(media, "missing"),
		HomeDir:      "/home/u",
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), scans.Load(), "initial scan")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	defer func() {
		cancel()
		<-done
	}()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 20; i++ {
		require.NoError(t, os.Mkdir(filepath.Join(media, fmt.Sprintf("disk%d", i)), 0755))
	}
	require.Eventually(t, func() bool { return scans.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(2), scans.Load(), "a burst of hints shares one rescan")
}

func TestFakeMonitorHandlers(t *testing.T) {
	f := NewFake()
	calls := 0
	ids := make([]HandlerID, 0, len(AllEvents))
	for _, kind := range AllEvents {
		ids = append(ids, f.Connect(kind, func() { calls++ }))
	}
	assert.Equal(t, 9, f.HandlerCount())

	f.Emit(MountAdded)
	assert.Equal(t, 1, calls)

	for _, id := range ids {
		f.Disconnect(id)
	}
	f.Disconnect(ids[0])
	assert.Zero(t, f.HandlerCount())
	f.Emit(MountAdded)
	assert.Equal(t, 1, calls)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "drive-connected", DriveConnected.String())
	assert.Equal(t, "unknown", EventKind(99).String())
}
