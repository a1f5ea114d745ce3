package volumes

import "sync"

// Fake is an in-memory Monitor for tests. Populate it with SetDrives,
// SetVolumes and SetMounts, then Emit events.
type Fake struct {
	handlerSet

	mu      sync.Mutex
	drives  []*Drive
	volumes []*Volume
	mounts  []*Mount
}

// NewFake returns an empty Fake monitor.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) SetDrives(drives ...*Drive) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drives = drives
}

func (f *Fake) SetVolumes(volumes ...*Volume) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = volumes
}

func (f *Fake) SetMounts(mounts ...*Mount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounts = mounts
}

func (f *Fake) ConnectedDrives() []*Drive {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Drive(nil), f.drives...)
}

func (f *Fake) Volumes() []*Volume {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Volume(nil), f.volumes...)
}

func (f *Fake) Mounts() []*Mount {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Mount(nil), f.mounts...)
}

func (f *Fake) Connect(kind EventKind, fn func()) HandlerID {
	return f.connect(kind, fn)
}

func (f *Fake) Disconnect(id HandlerID) {
	f.disconnect(id)
}

// Emit delivers kind to connected handlers synchronously.
func (f *Fake) Emit(kind EventKind) {
	f.emit(kind)
}

// HandlerCount returns the number of connected handlers.
func (f *Fake) HandlerCount() int {
	return f.count()
}
