// Package session provides the inactivity watchdog that locks the vault
// after a configurable idle period.
package session

import (
	"sync"
	"time"
)

// Guard fires a callback once after the idle duration elapses with no
// activity. Reset restarts the countdown; after the callback has fired the
// guard stays dormant until Restart. Stop cancels any pending countdown so
// a stale callback can never fire after teardown.
type Guard struct {
	mu        sync.Mutex
	idle      time.Duration
	onTimeout func()

	timer      *time.Timer
	generation uint64
	fired      bool
	stopped    bool
}

// New creates a Guard and starts its countdown immediately.
func New(idle time.Duration, onTimeout func()) *Guard {
	g := &Guard{
		idle:      idle,
		onTimeout: onTimeout,
	}
	g.mu.Lock()
	g.armLocked()
	g.mu.Unlock()
	return g
}

// armLocked schedules a countdown bound to the current generation. A fire
// from a superseded generation is ignored, so cancel-and-reschedule can
// never produce two live countdowns.
func (g *Guard) armLocked() {
	g.generation++
	gen := g.generation
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.idle, func() {
		g.fire(gen)
	})
}

func (g *Guard) fire(gen uint64) {
	g.mu.Lock()
	if g.stopped || g.fired || gen != g.generation {
		g.mu.Unlock()
		return
	}
	g.fired = true
	cb := g.onTimeout
	g.mu.Unlock()
	cb()
}

// Reset restarts the countdown in response to observed activity. It has no
// effect once the guard has fired or been stopped.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped || g.fired {
		return
	}
	g.armLocked()
}

// Restart re-arms a guard that has already fired.
func (g *Guard) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.fired = false
	g.armLocked()
}

// Stop cancels the pending countdown permanently.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
