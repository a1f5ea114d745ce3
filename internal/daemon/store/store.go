package store

import (
	"sync"

	"github.com/grovetools/places/pkg/places"
)

// Store is the in-memory state store for the daemon.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	snapshot    places.Snapshot
	subscribers map[chan Update]struct{}
}

// New creates a new Store instance.
func New() *Store {
	return &Store{
		subscribers: make(map[chan Update]struct{}),
	}
}

// Get returns the current snapshot.
func (s *Store) Get() places.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Reset replaces the whole snapshot without notifying subscribers.
func (s *Store) Reset(snap places.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// ApplyEvent installs the refreshed list for the event's kind and
// notifies subscribers.
func (s *Store) ApplyEvent(event places.Event, list []places.EntryView) {
	kind := event.Kind()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case places.KindDevices:
		s.snapshot.Devices = list
	case places.KindBookmarks:
		s.snapshot.Bookmarks = list
	case places.KindNetwork:
		s.snapshot.Network = list
	}

	s.broadcast(Update{
		Type:   UpdatePlaces,
		Event:  event.String(),
		Kind:   kind.String(),
		Places: list,
	})
}

// BroadcastConfigReload tells subscribers a config file changed on disk.
func (s *Store) BroadcastConfigReload(file string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.broadcast(Update{Type: UpdateConfigReload, ConfigFile: file})
}

// broadcast must be called with mu held.
func (s *Store) broadcast(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Slow clients miss updates rather than stalling the loop.
		}
	}
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 64)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

// Subscribers returns the number of open subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
