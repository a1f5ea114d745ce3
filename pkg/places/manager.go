// Package places maintains the lists of places a desktop shell shows:
// special directories, mounted devices, bookmarks and network locations.
//
// A Manager builds the special list once, keeps the devices and network
// lists in step with a volumes.Monitor, and reloads bookmarks when the GTK
// bookmarks file changes. Consumers learn about changes only through the
// three Events.
package places

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/places/errors"
	"github.com/grovetools/places/internal/metrics"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/launch"
	"github.com/grovetools/places/pkg/location"
	"github.com/grovetools/places/pkg/mainloop"
	"github.com/grovetools/places/pkg/paths"
	"github.com/grovetools/places/pkg/volumes"
)

// Options configures a Manager. Only Monitor is required.
type Options struct {
	UseSymbolicIcons bool

	Monitor volumes.Monitor
	// Scheduler serialises every list update. It must be a running
	// mainloop.Loop for the manager to follow changes. When nil the manager
	// is a one-shot snapshot: a Manual scheduler is used, bookmarks are not
	// watched, and Monitor must not emit events from other goroutines.
	Scheduler mainloop.Scheduler
	Dirs      Dirs
	Locations location.Service

	// BookmarkFiles overrides the bookmarks file candidates.
	BookmarkFiles []string
	Debounce      time.Duration
	// Watch defaults to WatchFiles, or to NoWatch without a Scheduler.
	// Setting it without a Scheduler is an error.
	Watch WatchFunc

	Logger  *logrus.Entry
	Metrics *metrics.Metrics
}

// Manager owns the four place lists.
//
// Lists are only ever replaced, never modified, so a slice returned by a
// query stays valid. Queries may be called from any goroutine. Construction
// and Destroy must happen on the scheduler's goroutine, or while it is not
// running.
type Manager struct {
	bus     Bus
	factory *Factory
	logger  *logrus.Entry
	metrics *metrics.Metrics

	mu     sync.RWMutex
	places [len(kindNames)][]*Entry

	mounts    *MountAggregator
	bookmarks *BookmarkStore
	destroyed bool
}

// NewManager builds the special list, then the devices, network and
// bookmarks lists, so every query has content when it returns.
func NewManager(opts Options) (*Manager, error) {
	if opts.Monitor == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "places: a volume monitor is required")
	}
	if opts.Scheduler == nil {
		if opts.Watch != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "places: watching bookmarks needs a running scheduler")
		}
		opts.Scheduler = mainloop.NewManual()
		opts.Watch = NoWatch
	}
	if opts.Dirs == nil {
		opts.Dirs = paths.SystemDirs{}
	}
	if opts.Locations == nil {
		opts.Locations = location.NewFileService(SpecialIcons(opts.Dirs))
	}
	if opts.BookmarkFiles == nil {
		opts.BookmarkFiles = paths.BookmarkFileCandidates()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("places")
	}

	m := &Manager{
		factory: NewFactory(opts.Locations, opts.UseSymbolicIcons),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}

	m.places[KindSpecial] = buildSpecial(m.factory, opts.Dirs, opts.Locations)
	m.metrics.SetPlaces(KindSpecial.String(), len(m.places[KindSpecial]))

	m.mounts = NewMountAggregator(opts.Monitor, m.factory, opts.Scheduler, m.setMounts, opts.Logger, opts.Metrics)
	m.bookmarks = NewBookmarkStore(BookmarkStoreOptions{
		Candidates: opts.BookmarkFiles,
		Debounce:   opts.Debounce,
		Watch:      opts.Watch,
		Factory:    m.factory,
		Locations:  opts.Locations,
		Scheduler:  opts.Scheduler,
		Special:    m.GetDefaultPlaces,
		Deliver:    m.setBookmarks,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
	})

	m.logger.WithFields(logrus.Fields{
		"special":   len(m.GetDefaultPlaces()),
		"devices":   len(m.GetMounts()),
		"bookmarks": len(m.GetBookmarks()),
		"network":   len(m.GetPlace(KindNetwork)),
	}).Debug("Places manager ready")
	return m, nil
}

func (m *Manager) setMounts(devices, network []*Entry) {
	m.mu.Lock()
	m.places[KindDevices] = devices
	m.places[KindNetwork] = network
	m.mu.Unlock()

	m.metrics.SetPlaces(KindDevices.String(), len(devices))
	m.metrics.SetPlaces(KindNetwork.String(), len(network))
	m.publish(DevicesUpdated)
	m.publish(NetworkUpdated)
}

func (m *Manager) setBookmarks(bookmarks []*Entry) {
	m.mu.Lock()
	m.places[KindBookmarks] = bookmarks
	m.mu.Unlock()

	m.metrics.SetPlaces(KindBookmarks.String(), len(bookmarks))
	m.publish(BookmarksUpdated)
}

func (m *Manager) publish(e Event) {
	m.metrics.RecordEvent(e.String())
	m.bus.Publish(e)
}

// GetPlace returns the list for kind. The slice must not be modified.
func (m *Manager) GetPlace(kind Kind) []*Entry {
	if kind < 0 || int(kind) >= len(m.places) {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.places[kind]
}

// GetAllPlaces returns special, bookmarks and devices, in that order.
// Network places are not part of this view.
func (m *Manager) GetAllPlaces() []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]*Entry, 0, len(m.places[KindSpecial])+len(m.places[KindBookmarks])+len(m.places[KindDevices]))
	all = append(all, m.places[KindSpecial]...)
	all = append(all, m.places[KindBookmarks]...)
	all = append(all, m.places[KindDevices]...)
	return all
}

func (m *Manager) GetDefaultPlaces() []*Entry { return m.GetPlace(KindSpecial) }
func (m *Manager) GetBookmarks() []*Entry     { return m.GetPlace(KindBookmarks) }
func (m *Manager) GetMounts() []*Entry        { return m.GetPlace(KindDevices) }

// Subscribe registers h for event. Handlers run on the scheduler goroutine
// after the corresponding list has been replaced.
func (m *Manager) Subscribe(event Event, h Handler) SubscriptionID {
	return m.bus.Subscribe(event, h)
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (m *Manager) Unsubscribe(id SubscriptionID) {
	m.bus.Unsubscribe(id)
}

// BookmarksFile returns the bookmarks file being tracked, or "".
func (m *Manager) BookmarksFile() string {
	return m.bookmarks.Path()
}

// Destroy disconnects from the monitor, stops the bookmarks watch and
// cancels a pending reload. No list changes or events happen afterwards.
// It is idempotent.
func (m *Manager) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.mounts.Close()
	m.bookmarks.Close()
	m.logger.Debug("Places manager destroyed")
}

// Snapshot is a point-in-time copy of all four lists.
type Snapshot struct {
	Special   []EntryView `json:"special"`
	Devices   []EntryView `json:"devices"`
	Bookmarks []EntryView `json:"bookmarks"`
	Network   []EntryView `json:"network"`
}

// List returns the views for kind.
func (s Snapshot) List(kind Kind) []EntryView {
	switch kind {
	case KindSpecial:
		return s.Special
	case KindDevices:
		return s.Devices
	case KindBookmarks:
		return s.Bookmarks
	case KindNetwork:
		return s.Network
	}
	return nil
}

// All mirrors GetAllPlaces.
func (s Snapshot) All() []EntryView {
	all := append([]EntryView{}, s.Special...)
	all = append(all, s.Bookmarks...)
	return append(all, s.Devices...)
}

// Snapshot copies the current lists.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Special:   Views(m.places[KindSpecial]),
		Devices:   Views(m.places[KindDevices]),
		Bookmarks: Views(m.places[KindBookmarks]),
		Network:   Views(m.places[KindNetwork]),
	}
}

// Lookup finds a place by display name (case-insensitive) or by location.
// All four lists are searched in Kinds order.
func (m *Manager) Lookup(query string) (*Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty place name")
	}
	loc := location.Parse(query)

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, kind := range Kinds {
		for _, e := range m.places[kind] {
			if strings.EqualFold(e.Name(), query) {
				return e, nil
			}
		}
	}
	if !loc.IsZero() {
		for _, kind := range Kinds {
			for _, e := range m.places[kind] {
				if e.Location().Equal(loc) {
					return e, nil
				}
			}
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no place named "+query).WithDetail("query", query)
}

// Launch looks up a place and opens it.
func (m *Manager) Launch(ctx context.Context, query string, timestamp uint32, launcher launch.Launcher, notifier launch.Notifier) error {
	e, err := m.Lookup(query)
	if err != nil {
		m.metrics.RecordLaunch("not_found")
		return err
	}
	m.logger.WithFields(logrus.Fields{"name": e.Name(), "uri": e.Location().URI()}).Info("Launching place")
	if err := e.Launch(ctx, timestamp, launcher, notifier); err != nil {
		m.metrics.RecordLaunch("failed")
		return err
	}
	m.metrics.RecordLaunch("ok")
	return nil
}
