// Package cooldown suppresses repeat triggers of the same button that arrive
// within a short window, the software equivalent of a GPIO bounce time.
package cooldown

import (
	"sync"
	"time"
)

// pruneEvery bounds how often Allow sweeps stale keys.
const pruneEvery = 256

// Gate remembers the last accepted trigger per key.
type Gate struct {
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	last  map[string]time.Time
	calls int
}

// New creates a Gate. A window of zero or less lets everything through.
func New(window time.Duration) *Gate {
	return &Gate{window: window, now: time.Now, last: make(map[string]time.Time)}
}

// Window returns the debounce window.
func (g *Gate) Window() time.Duration {
	return g.window
}

// Allow reports whether key may fire now and, if so, records it. A trigger
// rejected for bouncing does not extend the window.
func (g *Gate) Allow(key string) bool {
	if g.window <= 0 {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if t, ok := g.last[key]; ok && now.Sub(t) < g.window {
		return false
	}
	g.last[key] = now

	g.calls++
	if g.calls%pruneEvery == 0 {
		for k, t := range g.last {
			if now.Sub(t) >= g.window {
				delete(g.last, k)
			}
		}
	}
	return true
}

// Reset forgets key.
func (g *Gate) Reset(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, key)
}
