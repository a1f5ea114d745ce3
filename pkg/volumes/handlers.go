package volumes

import (
	"sort"
	"sync"
)

// handlerSet is the Connect/Disconnect bookkeeping shared by monitors.
type handlerSet struct {
	mu       sync.Mutex
	next     HandlerID
	handlers map[HandlerID]handler
}

type handler struct {
	kind EventKind
	fn   func()
}

func (h *handlerSet) connect(kind EventKind, fn func()) HandlerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = make(map[HandlerID]handler)
	}
	h.next++
	h.handlers[h.next] = handler{kind: kind, fn: fn}
	return h.next
}

func (h *handlerSet) disconnect(id HandlerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, id)
}

func (h *handlerSet) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}

// emit calls every handler connected to kind, in connection order. Handlers
// run without the lock held so they may connect or disconnect.
func (h *handlerSet) emit(kind EventKind) {
	h.mu.Lock()
	ids := make([]HandlerID, 0, len(h.handlers))
	for id, hd := range h.handlers {
		if hd.kind == kind {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.handlers[id].fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
