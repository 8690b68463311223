package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	state    *State
	lastSeen time.Time
}

// Registry is a thread-safe in-memory map of session states keyed by
// session id. A background goroutine (Run) evicts sessions that have not
// been seen within the idle TTL.
type Registry struct {
	mu   sync.RWMutex
	data map[string]*entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// NewRegistry creates a Registry that forgets sessions idle for ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		data: make(map[string]*entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the State for id, creating an empty one if needed, and marks
// the session as seen.
func (r *Registry) Get(id string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[id]
	if !ok {
		e = &entry{state: newState(id)}
		r.data[id] = e
	}
	e.lastSeen = r.now()
	return e.state
}

// Lookup returns the State for id without creating or touching it.
func (r *Registry) Lookup(id string) (*State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.data[id]
	if !ok {
		return nil, false
	}
	return e.state, true
}

// Count returns the number of sessions currently held.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Evict removes sessions last seen at or before now minus TTL.
// It returns the number of sessions removed.
func (r *Registry) Evict(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := now.Add(-r.ttl)
	removed := 0
	for id, e := range r.data {
		if !e.lastSeen.After(cutoff) {
			delete(r.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the eviction loop. It ticks at half the TTL (minimum 1 second,
// maximum 10 minutes) and blocks until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 10*time.Minute {
		interval = 10 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Evict(now); n > 0 {
				slog.Debug("session: evicted idle sessions", "count", n)
			}
		}
	}
}
