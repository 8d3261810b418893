package gateway

import (
	"sync"
)

// Registry maps user ids to their live channel. Exactly one channel per
// user id: a later Register for the same id supersedes the earlier one,
// and the superseded channel is force-closed so a reconnect from a second
// device does not leak the first socket.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Channel)}
}

// Register stores ch under userID, replacing any existing entry. Always
// succeeds; the previous channel (if any) is closed outside the lock.
func (r *Registry) Register(userID string, ch Channel) {
	r.mu.Lock()
	old := r.conns[userID]
	r.conns[userID] = ch
	r.mu.Unlock()

	if old != nil && old != ch {
		_ = old.Close()
	}
}

// Unregister removes the entry if present and returns the removed
// channel so the caller can dispose of it. No-op when absent.
func (r *Registry) Unregister(userID string) (Channel, bool) {
	r.mu.Lock()
	ch, ok := r.conns[userID]
	if ok {
		delete(r.conns, userID)
	}
	r.mu.Unlock()
	return ch, ok
}

// UnregisterIf removes the entry only while it still maps to ch. After a
// reconnect superseded ch, the stale connection's cleanup finds a newer
// channel under the user id and must leave it alone.
func (r *Registry) UnregisterIf(userID string, ch Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.conns[userID]
	if !ok || cur != ch {
		return false
	}
	delete(r.conns, userID)
	return true
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

func (r *Registry) Lookup(userID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.conns[userID]
	return ch, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot copies the current user->channel mapping so delivery can
// iterate without holding the lock.
func (r *Registry) Snapshot() map[string]Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Channel, len(r.conns))
	for u, ch := range r.conns {
		out[u] = ch
	}
	return out
}
