package volumes

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/grovetools/places/command"
)

var lsblkArgs = []string{"-J", "-o", "NAME,SIZE,LABEL,UUID,FSTYPE,MOUNTPOINT,TYPE,HOTPLUG,RM,MODEL"}

// LsblkDevice is a block device from `lsblk -J`.
type LsblkDevice struct {
	Name       string        `json:"name"`
	Size       string        `json:"size"`
	Label      string        `json:"label"`
	UUID       string        `json:"uuid"`
	Fstype     string        `json:"fstype"`
	Mountpoint string        `json:"mountpoint"`
	Type       string        `json:"type"`
	Model      string        `json:"model"`
	Hotplug    lsblkBool     `json:"hotplug"`
	Removable  lsblkBool     `json:"rm"`
	Children   []LsblkDevice `json:"children"`
}

// LsblkOutput is the root object of `lsblk -J`.
type LsblkOutput struct {
	BlockDevices []LsblkDevice `json:"blockdevices"`
}

// lsblkBool accepts both the boolean and the "0"/"1" encodings older
// util-linux releases emit.
type lsblkBool bool

func (b *lsblkBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch s {
	case "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// ParseLsblk decodes `lsblk -J` output.
func ParseLsblk(data []byte) ([]LsblkDevice, error) {
	var out LsblkOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.BlockDevices, nil
}

// listBlockDevices runs lsblk. A missing lsblk yields no devices.
func listBlockDevices(ctx context.Context, runner command.Runner) ([]LsblkDevice, error) {
	if !runner.Available("lsblk") {
		return nil, nil
	}
	res, err := runner.Run(ctx, "lsblk", lsblkArgs, nil)
	if err != nil {
		return nil, err
	}
	return ParseLsblk(res.Stdout)
}

// isSystemDisk reports whether the device tree holds the root filesystem.
func isSystemDisk(dev *LsblkDevice) bool {
	if dev.Mountpoint == "/" || dev.Mountpoint == "/boot" || dev.Mountpoint == "[SWAP]" {
		return true
	}
	for i := range dev.Children {
		if isSystemDisk(&dev.Children[i]) {
			return true
		}
	}
	return false
}

// isExternalDisk reports whether a disk is hot-pluggable or removable.
func isExternalDisk(dev *LsblkDevice) bool {
	return bool(dev.Hotplug) || bool(dev.Removable) || dev.Type == "rom"
}

// filesystems collects the leaves of dev that carry a mountable filesystem.
// Encrypted containers are descended into.
func filesystems(dev *LsblkDevice) []*LsblkDevice {
	var out []*LsblkDevice
	var walk func(d *LsblkDevice)
	walk = func(d *LsblkDevice) {
		if d.Fstype != "" && d.Fstype != "swap" && d.Fstype != "crypto_LUKS" && len(d.Children) == 0 {
			out = append(out, d)
		}
		for i := range d.Children {
			walk(&d.Children[i])
		}
	}
	walk(dev)
	return out
}
