package places

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/places/internal/metrics"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/mainloop"
	"github.com/grovetools/places/pkg/volumes"
)

// MountsFunc receives freshly rebuilt device and network lists.
type MountsFunc func(devices, network []*Entry)

// MountAggregator turns the monitor's drives, volumes and mounts into the
// devices and network lists, rebuilding both from scratch on every monitor
// event.
//
// Everything except construction runs on the scheduler's goroutine.
type MountAggregator struct {
	monitor volumes.Monitor
	factory *Factory
	sched   mainloop.Scheduler
	deliver MountsFunc
	logger  *logrus.Entry
	metrics *metrics.Metrics

	handlers []volumes.HandlerID
	closed   bool
}

// NewMountAggregator subscribes to every monitor event and performs the
// first rebuild before returning.
func NewMountAggregator(monitor volumes.Monitor, factory *Factory, sched mainloop.Scheduler, deliver MountsFunc, logger *logrus.Entry, m *metrics.Metrics) *MountAggregator {
	a := &MountAggregator{
		monitor: monitor,
		factory: factory,
		sched:   sched,
		deliver: deliver,
		logger:  logger,
		metrics: m,
	}
	for _, kind := range volumes.AllEvents {
		kind := kind
		id := monitor.Connect(kind, func() {
			sched.Post(func() { a.onMonitorEvent(kind) })
		})
		a.handlers = append(a.handlers, id)
	}
	a.Rebuild()
	return a
}

func (a *MountAggregator) onMonitorEvent(kind volumes.EventKind) {
	if a.closed {
		return
	}
	a.logger.WithField("event", kind.String()).Debug("Monitor event, rebuilding mounts")
	a.Rebuild()
}

// Rebuild recomputes both lists and hands them to the deliver callback.
func (a *MountAggregator) Rebuild() {
	if a.closed {
		return
	}
	start := time.Now()
	devices, network := a.build()
	a.deliver(devices, network)
	a.metrics.RecordMountRebuild(time.Since(start))
}

func (a *MountAggregator) build() (devices, network []*Entry) {
	suffix := ""
	if a.factory.Symbolic() {
		suffix = "-symbolic"
	}
	devices = []*Entry{
		a.factory.Place(KindDevices, location.NewForPath("/"), "Computer", "drive-harddisk"+suffix),
	}
	network = []*Entry{
		a.factory.Place(KindNetwork, location.NewForURI("network:///"), "Browse network", "network-workgroup"+suffix),
	}

	add := func(kind Kind, mount *volumes.Mount) {
		e := a.factory.Device(kind, mount)
		if kind == KindNetwork {
			network = append(network, e)
		} else {
			devices = append(devices, e)
		}
	}
	volumeKind := func(v *volumes.Volume) Kind {
		if v.IsNetwork() {
			return KindNetwork
		}
		return KindDevices
	}

	for _, drive := range a.monitor.ConnectedDrives() {
		for _, v := range drive.Volumes {
			if v.Mount != nil {
				add(volumeKind(v), v.Mount)
			}
		}
	}

	for _, v := range a.monitor.Volumes() {
		if v.Drive != nil || v.Mount == nil {
			continue
		}
		add(volumeKind(v), v.Mount)
	}

	for _, m := range a.monitor.Mounts() {
		if m.Shadowed || m.Volume != nil {
			continue
		}
		if m.Root.IsNative() {
			add(KindDevices, m)
		} else {
			add(KindNetwork, m)
		}
	}
	return devices, network
}

// Close disconnects from the monitor. Rebuilds already queued on the
// scheduler become no-ops. Close is idempotent.
func (a *MountAggregator) Close() {
	if a.closed {
		return
	}
	a.closed = true
	for _, id := range a.handlers {
		a.monitor.Disconnect(id)
	}
	a.handlers = nil
}
