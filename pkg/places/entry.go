package places

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/pkg/launch"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/volumes"
)

// Fallback icons used when a location's own icon cannot be looked up.
const (
	iconRemoteFolder = "folder-remote-symbolic"
	iconHardDisk     = "drive-harddisk-symbolic"
	iconFolder       = "folder-symbolic"
)

// Variant tells generic places apart from mount-backed devices.
type Variant int

const (
	VariantGeneric Variant = iota
	VariantDevice
)

// Entry is one place: a named, launchable location. Entries are immutable;
// lists are rebuilt with new entries instead of being edited.
type Entry struct {
	kind    Kind
	loc     location.Location
	name    string
	icon    location.Icon
	variant Variant
	mount   *volumes.Mount
}

func (e *Entry) Kind() Kind                  { return e.kind }
func (e *Entry) Location() location.Location { return e.loc }
func (e *Entry) Name() string                { return e.name }
func (e *Entry) Icon() location.Icon         { return e.icon }
func (e *Entry) Variant() Variant            { return e.variant }

// Mount returns the backing mount of a device entry, or nil.
func (e *Entry) Mount() *volumes.Mount { return e.mount }

// IsRemovable reports whether the place can be ejected. No current variant
// supports it.
func (e *Entry) IsRemovable() bool {
	return false
}

// Equal reports whether two entries point at the same location.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.loc.Equal(other.loc)
}

// Launch opens the place with the default handler. A location that is not
// mounted yet gets its enclosing volume mounted and is opened again. Any
// other failure is reported through notifier as well as returned.
//
// Launch blocks until the open, and any mount it needs, has finished or ctx
// is done. It never touches manager state, so a caller on the scheduler
// goroutine runs it on a goroutine of its own to keep the loop responsive.
func (e *Entry) Launch(ctx context.Context, timestamp uint32, launcher launch.Launcher, notifier launch.Notifier) error {
	err := launcher.Open(ctx, e.loc, timestamp)
	if errors.Is(err, errors.ErrCodeNotMounted) {
		if err = launcher.Mount(ctx, e.loc); err == nil {
			err = launcher.Open(ctx, e.loc, timestamp)
		}
	}
	if err != nil && notifier != nil {
		notifier.NotifyError(`Failed to launch "`+e.name+`"`, userMessage(err))
	}
	return err
}

// userMessage extracts the underlying reason from a coded error.
func userMessage(err error) string {
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		if coded.Cause != nil {
			return coded.Cause.Error()
		}
		return coded.Message
	}
	return err.Error()
}

// EntryView is the serialisable form of an Entry.
type EntryView struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	URI    string `json:"uri"`
	Path   string `json:"path,omitempty"`
	Icon   string `json:"icon"`
	Native bool   `json:"native"`
	Device bool   `json:"device,omitempty"`
}

// View returns the serialisable form of e.
func (e *Entry) View() EntryView {
	return EntryView{
		Kind:   e.kind,
		Name:   e.name,
		URI:    e.loc.URI(),
		Path:   e.loc.Path(),
		Icon:   e.icon.Name,
		Native: e.loc.IsNative(),
		Device: e.variant == VariantDevice,
	}
}

func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.View())
}

// Views converts a list of entries.
func Views(entries []*Entry) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = e.View()
	}
	return out
}

// resolver derives the metadata an entry was not given explicitly.
type resolver interface {
	resolveIcon() location.Icon
	resolveDisplayName() string
}

type genericResolver struct {
	f    *Factory
	kind Kind
	loc  location.Location
}

func (r genericResolver) resolveIcon() location.Icon {
	if icon, err := r.f.service.Icon(r.loc, r.f.symbolic); err == nil && !icon.IsZero() {
		return icon
	}
	switch r.kind {
	case KindNetwork:
		return location.Themed(iconRemoteFolder)
	case KindDevices:
		return location.Themed(iconHardDisk)
	default:
		if !r.loc.IsNative() {
			return location.Themed(iconRemoteFolder)
		}
		return location.Themed(iconFolder)
	}
}

func (r genericResolver) resolveDisplayName() string {
	if name, err := r.f.service.DisplayName(r.loc); err == nil && name != "" {
		return name
	}
	return r.loc.BaseName()
}

type deviceResolver struct {
	generic genericResolver
	mount   *volumes.Mount
}

func (r deviceResolver) resolveIcon() location.Icon {
	icon := r.mount.Icon
	if r.generic.f.symbolic {
		icon = r.mount.SymbolicIcon
	}
	if icon.IsZero() {
		return r.generic.resolveIcon()
	}
	return icon
}

func (r deviceResolver) resolveDisplayName() string {
	if r.mount.Name != "" {
		return r.mount.Name
	}
	return r.generic.resolveDisplayName()
}

// Factory builds entries with a fixed icon style and location service.
type Factory struct {
	service  location.Service
	symbolic bool
}

// NewFactory returns a Factory. symbolic selects monochrome icons.
func NewFactory(service location.Service, symbolic bool) *Factory {
	return &Factory{service: service, symbolic: symbolic}
}

// Symbolic reports whether entries get symbolic icons.
func (f *Factory) Symbolic() bool {
	return f.symbolic
}

// Place builds a generic entry. Empty name or iconName are derived from the
// location.
func (f *Factory) Place(kind Kind, loc location.Location, name, iconName string) *Entry {
	return f.build(kind, loc, name, iconName, VariantGeneric, nil, genericResolver{f: f, kind: kind, loc: loc})
}

// Device builds an entry backed by mount. Its icon comes from the mount.
func (f *Factory) Device(kind Kind, mount *volumes.Mount) *Entry {
	generic := genericResolver{f: f, kind: kind, loc: mount.Root}
	return f.build(kind, mount.Root, "", "", VariantDevice, mount, deviceResolver{generic: generic, mount: mount})
}

func (f *Factory) build(kind Kind, loc location.Location, name, iconName string, variant Variant, mount *volumes.Mount, r resolver) *Entry {
	e := &Entry{kind: kind, loc: loc, name: name, variant: variant, mount: mount}
	if e.name == "" {
		e.name = r.resolveDisplayName()
	}
	if iconName != "" {
		e.icon = location.Themed(iconName)
	} else {
		e.icon = r.resolveIcon()
	}
	return e
}
