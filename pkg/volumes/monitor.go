// Package volumes enumerates drives, volumes and mounts and reports their
// lifecycle changes.
//
// The model follows the usual desktop hierarchy: a Drive holds Volumes, a
// Volume may be mounted, and a Mount may exist without any volume (gvfs
// shares, FUSE mounts, ad-hoc mounts under a media root).
package volumes

import (
	"strings"

	"github.com/grovetools/places/pkg/location"
)

// Identifier kinds understood by Volume.Identifier.
const (
	IdentifierClass      = "class"
	IdentifierUUID       = "uuid"
	IdentifierLabel      = "label"
	IdentifierUnixDevice = "unix-device"
)

// Volume classes.
const (
	ClassDevice  = "device"
	ClassNetwork = "network"
)

// Drive is a physical or virtual drive with zero or more volumes.
type Drive struct {
	ID      string
	Name    string
	Volumes []*Volume
}

// Volume is a mountable filesystem, optionally on a Drive.
type Volume struct {
	ID     string
	Name   string
	Class  string
	UUID   string
	Label  string
	Device string

	Drive *Drive
	Mount *Mount
}

// Identifier returns the identifier of the given kind, or "" if unknown.
func (v *Volume) Identifier(kind string) string {
	switch kind {
	case IdentifierClass:
		return v.Class
	case IdentifierUUID:
		return v.UUID
	case IdentifierLabel:
		return v.Label
	case IdentifierUnixDevice:
		return v.Device
	}
	return ""
}

// IsNetwork reports whether the volume's class marks it as a network share.
func (v *Volume) IsNetwork() bool {
	return strings.Contains(v.Identifier(IdentifierClass), ClassNetwork)
}

// Mount is a currently accessible filesystem root.
type Mount struct {
	Name         string
	Root         location.Location
	Icon         location.Icon
	SymbolicIcon location.Icon

	// Volume is nil for mounts that do not belong to a volume.
	Volume *Volume

	// Shadowed mounts are hidden by another mount at the same root.
	Shadowed bool
}

// EventKind names one of the monitor lifecycle events.
type EventKind int

const (
	VolumeAdded EventKind = iota
	VolumeRemoved
	VolumeChanged
	MountAdded
	MountRemoved
	MountChanged
	DriveConnected
	DriveDisconnected
	DriveChanged
)

// AllEvents lists every EventKind.
var AllEvents = []EventKind{
	VolumeAdded, VolumeRemoved, VolumeChanged,
	MountAdded, MountRemoved, MountChanged,
	DriveConnected, DriveDisconnected, DriveChanged,
}

var eventNames = map[EventKind]string{
	VolumeAdded:       "volume-added",
	VolumeRemoved:     "volume-removed",
	VolumeChanged:     "volume-changed",
	MountAdded:        "mount-added",
	MountRemoved:      "mount-removed",
	MountChanged:      "mount-changed",
	DriveConnected:    "drive-connected",
	DriveDisconnected: "drive-disconnected",
	DriveChanged:      "drive-changed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// HandlerID identifies a connected handler.
type HandlerID uint64

// Monitor is the volume/mount service places are built from.
//
// Handlers may be called from any goroutine. Enumeration methods return the
// monitor's latest snapshot and never block on the OS.
type Monitor interface {
	ConnectedDrives() []*Drive
	// Volumes returns every volume, including those that belong to a drive.
	Volumes() []*Volume
	// Mounts returns every mount, including shadowed and volume-backed ones.
	Mounts() []*Mount

	Connect(kind EventKind, fn func()) HandlerID
	// Disconnect removes a handler. Unknown ids are ignored.
	Disconnect(id HandlerID)
}
