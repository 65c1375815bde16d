package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Pusher is a best-effort, non-blocking push target for outbound frames.
// Push reports whether the frame was accepted.
type Pusher interface {
	Push(data []byte) bool
}

// Registry maps each user to their single live connection. Registering a new
// connection for an already-connected user replaces the old entry; the
// replaced handle is orphaned, not closed, and its owning session is expected
// to clean up via Release when its transport dies.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]Pusher
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]Pusher)}
}

// Register inserts or replaces the connection for userID. Never fails.
func (r *Registry) Register(userID uuid.UUID, p Pusher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = p
}

// Unregister removes the entry for userID, if any.
func (r *Registry) Unregister(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, userID)
}

// Release removes the entry for userID only if it still holds p, so a
// replaced session's teardown cannot evict its successor.
func (r *Registry) Release(userID uuid.UUID, p Pusher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[userID] == p {
		delete(r.conns, userID)
	}
}

// Lookup returns the live connection for userID, if any.
func (r *Registry) Lookup(userID uuid.UUID) (Pusher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.conns[userID]
	return p, ok
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
