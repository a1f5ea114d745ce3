package places

import (
	"sort"
	"sync"
)

// Event is a category-level change notification. Events carry no payload;
// handlers query the Manager for the new content.
type Event int

const (
	DevicesUpdated Event = iota
	NetworkUpdated
	BookmarksUpdated
)

// Events lists every Event.
var Events = []Event{DevicesUpdated, NetworkUpdated, BookmarksUpdated}

func (e Event) String() string {
	switch e {
	case DevicesUpdated:
		return "devices-updated"
	case NetworkUpdated:
		return "network-updated"
	case BookmarksUpdated:
		return "bookmarks-updated"
	}
	return "unknown"
}

// Kind returns the list an event reports on.
func (e Event) Kind() Kind {
	switch e {
	case DevicesUpdated:
		return KindDevices
	case NetworkUpdated:
		return KindNetwork
	}
	return KindBookmarks
}

// SubscriptionID identifies a subscription for Unsubscribe.
type SubscriptionID uint64

// Handler is called when an event fires.
type Handler func()

// Bus is a typed publish/subscribe hub for Events.
type Bus struct {
	mu   sync.Mutex
	next SubscriptionID
	subs map[SubscriptionID]subscription
}

type subscription struct {
	event   Event
	handler Handler
}

// Subscribe registers h for event.
func (b *Bus) Subscribe(event Event, h Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[SubscriptionID]subscription)
	}
	b.next++
	b.subs[b.next] = subscription{event: event, handler: h}
	return b.next
}

// Unsubscribe removes a subscription and reports whether it existed.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return false
	}
	delete(b.subs, id)
	return true
}

// Publish calls the handlers subscribed to event in subscription order.
// Handlers run without the bus lock and may subscribe or unsubscribe.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	ids := make([]SubscriptionID, 0, len(b.subs))
	for id, s := range b.subs {
		if s.event == event {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]Handler, len(ids))
	for i, id := range ids {
		handlers[i] = b.subs[id].handler
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
