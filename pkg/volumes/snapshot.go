package volumes

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/grovetools/places/pkg/location"
)

// networkFstypes are kernel filesystems backed by a network share. They are
// reported as network-class volumes.
var networkFstypes = map[string]bool{
	"nfs":   true,
	"nfs4":  true,
	"cifs":  true,
	"smb3":  true,
	"smbfs": true,
	"afs":   true,
	"ncpfs": true,
}

// fuseNetworkFstypes are user-space network filesystems. Like gvfs shares
// they have no volume, only a mount.
var fuseNetworkFstypes = map[string]bool{
	"fuse.sshfs":     true,
	"fuse.rclone":    true,
	"davfs":          true,
	"fuse.davfs2":    true,
	"fuse.curlftpfs": true,
}

// snapshot is one consistent view of the system.
type snapshot struct {
	drives  []*Drive
	volumes []*Volume
	mounts  []*Mount
}

// scanInput is everything a snapshot is derived from. Keeping it separate
// from the OS calls lets snapshots be built from fixtures.
type scanInput struct {
	blockDevices []LsblkDevice
	partitions   []disk.PartitionStat
	gvfs         []gvfsMount
	gvfsDir      string
	home         string
	mediaRoots   []string
	ignore       *patternmatcher.PatternMatcher
}

func buildSnapshot(in scanInput) *snapshot {
	snap := &snapshot{}

	// Later entries in the mount table sit on top of earlier ones.
	topmost := make(map[string]int)
	for i, p := range in.partitions {
		topmost[p.Mountpoint] = i
	}
	byDevice := make(map[string]int)
	for i, p := range in.partitions {
		if _, seen := byDevice[p.Device]; !seen {
			byDevice[p.Device] = i
		}
	}
	claimed := make(map[int]bool)

	mountFor := func(v *Volume, lsblkMountpoint string) {
		idx, ok := byDevice[v.Device]
		mountpoint := lsblkMountpoint
		if ok {
			mountpoint = in.partitions[idx].Mountpoint
			claimed[idx] = true
		}
		if mountpoint == "" || in.ignored(mountpoint) {
			return
		}
		m := &Mount{
			Name:     v.Name,
			Root:     location.NewForPath(mountpoint),
			Volume:   v,
			Shadowed: ok && topmost[mountpoint] != idx,
		}
		m.Icon, m.SymbolicIcon = volumeIcons(v)
		v.Mount = m
		snap.mounts = append(snap.mounts, m)
	}

	for i := range in.blockDevices {
		dev := &in.blockDevices[i]
		if dev.Type != "disk" && dev.Type != "rom" {
			continue
		}
		if isSystemDisk(dev) || !isExternalDisk(dev) {
			continue
		}
		drive := &Drive{ID: "/dev/" + dev.Name, Name: driveName(dev)}
		for _, fs := range filesystems(dev) {
			v := &Volume{
				ID:     volumeID(fs),
				Name:   volumeName(fs, dev),
				Class:  ClassDevice,
				UUID:   fs.UUID,
				Label:  fs.Label,
				Device: "/dev/" + fs.Name,
				Drive:  drive,
			}
			if dev.Type == "rom" {
				v.Class = "device-optical"
			}
			drive.Volumes = append(drive.Volumes, v)
			snap.volumes = append(snap.volumes, v)
			mountFor(v, fs.Mountpoint)
		}
		snap.drives = append(snap.drives, drive)
	}

	for i, p := range in.partitions {
		if claimed[i] || in.ignored(p.Mountpoint) {
			continue
		}
		shadowed := topmost[p.Mountpoint] != i

		switch {
		case networkFstypes[p.Fstype]:
			v := &Volume{
				ID:     p.Device,
				Name:   networkShareName(p.Device),
				Class:  ClassNetwork,
				Device: p.Device,
			}
			m := &Mount{
				Name:     v.Name,
				Root:     location.NewForPath(p.Mountpoint),
				Volume:   v,
				Shadowed: shadowed,
			}
			m.Icon, m.SymbolicIcon = volumeIcons(v)
			v.Mount = m
			snap.volumes = append(snap.volumes, v)
			snap.mounts = append(snap.mounts, m)
		case in.displayable(p):
			icon := "drive-harddisk"
			if fuseNetworkFstypes[p.Fstype] {
				icon = "folder-remote"
			}
			snap.mounts = append(snap.mounts, &Mount{
				Name:         filepath.Base(p.Mountpoint),
				Root:         location.NewForPath(p.Mountpoint),
				Icon:         location.Themed(icon),
				SymbolicIcon: location.Themed(icon).Symbolic(),
				Shadowed:     shadowed,
			})
		}
	}

	for _, g := range in.gvfs {
		snap.mounts = append(snap.mounts, &Mount{
			Name:         g.Name,
			Root:         g.Root,
			Icon:         location.Themed("folder-remote"),
			SymbolicIcon: location.Themed("folder-remote").Symbolic(),
		})
	}

	return snap
}

func (in scanInput) ignored(mountpoint string) bool {
	if in.ignore == nil || mountpoint == "" {
		return false
	}
	matched, err := in.ignore.MatchesOrParentMatches(strings.TrimPrefix(mountpoint, "/"))
	return err == nil && matched
}

// displayable reports whether a volume-less kernel mount belongs in a places
// list: it must live under a media root or the home directory.
func (in scanInput) displayable(p disk.PartitionStat) bool {
	mp := filepath.Clean(p.Mountpoint)
	if mp == "/" || mp == in.home || mp == in.gvfsDir {
		return false
	}
	if strings.HasPrefix(p.Fstype, "fuse.gvfs") || p.Fstype == "fuse.portal" {
		return false
	}
	roots := append([]string{}, in.mediaRoots...)
	if in.home != "" {
		roots = append(roots, in.home)
	}
	for _, root := range roots {
		root = filepath.Clean(root)
		if strings.HasPrefix(mp, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func driveName(dev *LsblkDevice) string {
	if model := strings.TrimSpace(dev.Model); model != "" {
		return model
	}
	if dev.Size != "" {
		return dev.Size + " Drive"
	}
	return dev.Name
}

func volumeID(fs *LsblkDevice) string {
	if fs.UUID != "" {
		return fs.UUID
	}
	return "/dev/" + fs.Name
}

func volumeName(fs, drive *LsblkDevice) string {
	if fs.Label != "" {
		return fs.Label
	}
	if fs.Size != "" {
		return fs.Size + " Volume"
	}
	return driveName(drive)
}

func networkShareName(device string) string {
	device = strings.TrimPrefix(device, "//")
	if host, share, ok := strings.Cut(device, ":"); ok && share != "" {
		return filepath.Base(share) + " on " + host
	}
	if host, share, ok := strings.Cut(device, "/"); ok && share != "" {
		return filepath.Base(share) + " on " + host
	}
	return device
}

func volumeIcons(v *Volume) (location.Icon, location.Icon) {
	name := "drive-removable-media"
	switch {
	case v.IsNetwork():
		name = "folder-remote"
	case v.Class == "device-optical":
		name = "media-optical"
	}
	return location.Themed(name), location.Themed(name).Symbolic()
}

// eventsBetween lists the events that turn prev into next, removals first.
func eventsBetween(prev, next *snapshot) []EventKind {
	var removed, added, changed []EventKind

	diff := func(before, after map[string]string, add, remove, change EventKind) {
		for key, sig := range after {
			old, ok := before[key]
			switch {
			case !ok:
				added = append(added, add)
			case old != sig:
				changed = append(changed, change)
			}
		}
		for key := range before {
			if _, ok := after[key]; !ok {
				removed = append(removed, remove)
			}
		}
	}

	diff(mountSigs(prev), mountSigs(next), MountAdded, MountRemoved, MountChanged)
	diff(volumeSigs(prev), volumeSigs(next), VolumeAdded, VolumeRemoved, VolumeChanged)
	diff(driveSigs(prev), driveSigs(next), DriveConnected, DriveDisconnected, DriveChanged)

	events := append(removed, added...)
	events = append(events, changed...)
	return dedupeEvents(events)
}

func dedupeEvents(events []EventKind) []EventKind {
	seen := make(map[EventKind]bool)
	out := events[:0]
	for _, e := range events {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func driveSigs(s *snapshot) map[string]string {
	out := make(map[string]string)
	if s == nil {
		return out
	}
	for _, d := range s.drives {
		ids := make([]string, 0, len(d.Volumes))
		for _, v := range d.Volumes {
			ids = append(ids, v.ID)
		}
		sort.Strings(ids)
		out[d.ID] = d.Name + "|" + strings.Join(ids, ",")
	}
	return out
}

func volumeSigs(s *snapshot) map[string]string {
	out := make(map[string]string)
	if s == nil {
		return out
	}
	for _, v := range s.volumes {
		sig := v.Name + "|" + v.Class
		if v.Mount != nil {
			sig += "|" + v.Mount.Root.URI()
		}
		out[v.ID] = sig
	}
	return out
}

func mountSigs(s *snapshot) map[string]string {
	out := make(map[string]string)
	if s == nil {
		return out
	}
	for i, m := range s.mounts {
		key := m.Root.URI()
		if _, dup := out[key]; dup {
			key += "#" + strconv.Itoa(i)
		}
		sig := m.Name
		if m.Shadowed {
			sig += "|shadowed"
		}
		if m.Volume != nil {
			sig += "|" + m.Volume.ID
		}
		out[key] = sig
	}
	return out
}
