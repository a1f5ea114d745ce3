// Package mainloop runs callbacks one at a time on a single goroutine, the
// way a desktop shell's main loop does. Every mutation of places state is
// funnelled through it, so the state itself needs no finer-grained locking.
package mainloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped it; a
	// stopped callback never runs, even if it was already due.
	Stop() bool
}

// Scheduler is what loop-driven components need: a way to hand work to the
// loop and to schedule delayed one-shot work on it.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is the goroutine-backed Scheduler.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a Loop. Callbacks posted before Run starts are queued.
func New() *Loop {
	return &Loop{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled or Quit is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Quit()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			if l.quitting() {
				return nil
			}
			fn()
		}
	}
}

// Quit stops the loop. Pending and future callbacks are dropped.
func (l *Loop) Quit() {
	l.once.Do(func() { close(l.done) })
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine, including the loop itself; calls after Quit are dropped.
func (l *Loop) Post(fn func()) {
	if l.quitting() {
		return
	}
	select {
	case <-l.done:
	case l.queue <- fn:
	}
}

// Invoke runs fn on the loop and waits for it to finish. It returns false
// if the loop quit before fn could run. Must not be called from the loop.
func (l *Loop) Invoke(fn func()) bool {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) quitting() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// AfterFunc schedules fn to run on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.fired.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

type loopTimer struct {
	timer *time.Timer
	// fired is set once the callback has either run or been cancelled.
	fired atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.fired.CompareAndSwap(false, true)
}
