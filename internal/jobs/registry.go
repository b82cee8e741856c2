package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry holds the cancellation handle of every task that has not yet
// reached a terminal state.
type Registry struct {
	mu      sync.Mutex
	handles map[uuid.UUID]context.CancelFunc
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[uuid.UUID]context.CancelFunc)}
}

// Register derives a cancellable context for id from parent and stores
// its cancel func.
func (r *Registry) Register(parent context.Context, id uuid.UUID) context.Context {
	ctx, cancel := context.WithCancel(parent)
	r.mu.Lock()
	r.handles[id] = cancel
	r.mu.Unlock()
	return ctx
}

// Cancel triggers and removes the handle for id. It reports false when no
// handle exists.
func (r *Registry) Cancel(id uuid.UUID) bool {
	r.mu.Lock()
	cancel, ok := r.handles[id]
	delete(r.handles, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	cancel()
	return true
}

// Remove drops the handle for id, releasing its context resources without
// reporting a cancellation to the owner.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	cancel, ok := r.handles[id]
	delete(r.handles, id)
	r.mu.Unlock()

	if ok {
		cancel()
	}
}

// Has reports whether a handle is registered for id.
func (r *Registry) Has(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[id]
	return ok
}
