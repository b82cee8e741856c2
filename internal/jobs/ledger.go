package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger maps task IDs to their current status and last transition time.
// All operations are atomic per key.
type Ledger struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
	now     func() time.Time
}

// NewLedger returns an empty ledger using the wall clock.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[uuid.UUID]Entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create records a fresh queued entry for id.
func (l *Ledger) Create(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[id] = Entry{Status: StatusQueued, UpdatedAt: l.now()}
}

// Transition moves id to status. It returns false when id is unknown or
// already terminal; terminal entries never change.
func (l *Ledger) Transition(id uuid.UUID, status Status) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.entries[id]
	if !ok || cur.Status.Terminal() {
		return false
	}
	l.entries[id] = Entry{Status: status, UpdatedAt: l.now()}
	return true
}

// Get returns the entry recorded for id.
func (l *Ledger) Get(id uuid.UUID) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[id]
	return e, ok
}

// Len returns the number of tracked entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// EvictTerminalBefore removes terminal entries last updated before cutoff
// and returns their IDs.
func (l *Ledger) EvictTerminalBefore(cutoff time.Time) []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	var evicted []uuid.UUID
	for id, e := range l.entries {
		if e.Status.Terminal() && e.UpdatedAt.Before(cutoff) {
			delete(l.entries, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
