package mainloop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler. Posted callbacks run immediately on
// the calling goroutine and timers fire only when Advance moves the clock
// past their deadline. It backs tests and one-shot commands that never run
// a real loop.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

// NewManual creates a Manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Post runs fn immediately.
func (m *Manual) Post(fn func()) {
	fn()
}

// AfterFunc registers fn to fire once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, due: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d and runs every timer that became due,
// in deadline order. Timers scheduled by those callbacks are honoured if they
// also fall within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.SliceStable(m.timers, func(i, j int) bool {
			if m.timers[i].due == m.timers[j].due {
				return m.timers[i].seq < m.timers[j].seq
			}
			return m.timers[i].due < m.timers[j].due
		})
		if len(m.timers) == 0 || m.timers[0].due > target {
			m.now = target
			m.mu.Unlock()
			return
		}
		next := m.timers[0]
		m.timers = m.timers[1:]
		m.now = next.due
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

type manualTimer struct {
	owner *Manual
	due   time.Duration
	seq   int
	fn    func()
}

func (t *manualTimer) Stop() bool {
	m := t.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, pending := range m.timers {
		if pending == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}
