// Package guard enforces per-user command cooldowns and per-message
// deduplication. State is process-local: initialized empty at startup,
// expired by time, never persisted.
package guard

import (
	"sync"
	"time"
)

const (
	// DefaultCooldown is the minimum elapsed time between two accepted
	// commands from the same user.
	DefaultCooldown = 2 * time.Second

	// DefaultRetention is how long a completed dedup key keeps absorbing
	// near-duplicate redeliveries before it is evicted.
	DefaultRetention = 60 * time.Second
)

type inflightEntry struct {
	done        bool
	completedAt time.Time
}

// Guard tracks per-user last-command times and in-flight dedup keys. All
// operations are single-step check-and-set under one lock; safe for
// concurrent use.
type Guard struct {
	mu        sync.Mutex
	cooldown  time.Duration
	retention time.Duration
	lastSeen  map[string]time.Time
	inflight  map[string]inflightEntry
	now       func() time.Time
}

// New returns a Guard with the supplied windows; non-positive values fall
// back to the defaults.
func New(cooldown, retention time.Duration) *Guard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Guard{
		cooldown:  cooldown,
		retention: retention,
		lastSeen:  make(map[string]time.Time),
		inflight:  make(map[string]inflightEntry),
		now:       time.Now,
	}
}

// Allow reports whether the user may run a command now. On success the
// user's timestamp is recorded; a denial leaves state untouched so the
// window is measured from the last accepted command.
func (g *Guard) Allow(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.lastSeen[userID]; ok && now.Sub(last) < g.cooldown {
		return false
	}
	g.lastSeen[userID] = now
	return true
}

// Begin marks a dedup key as in-flight. It returns false when the key is
// already active, or completed within the retention window; the caller must
// then drop the event silently.
func (g *Guard) Begin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.prune(now)

	if entry, ok := g.inflight[key]; ok {
		if !entry.done || now.Sub(entry.completedAt) < g.retention {
			return false
		}
	}
	g.inflight[key] = inflightEntry{}
	return true
}

// End marks the key's processing as finished. The entry keeps rejecting
// duplicates until the retention window elapses.
func (g *Guard) End(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.inflight[key]; ok {
		g.inflight[key] = inflightEntry{done: true, completedAt: g.now()}
	}
}

// prune drops completed entries past retention. Called with the lock held.
func (g *Guard) prune(now time.Time) {
	for key, entry := range g.inflight {
		if entry.done && now.Sub(entry.completedAt) >= g.retention {
			delete(g.inflight, key)
		}
	}
}
