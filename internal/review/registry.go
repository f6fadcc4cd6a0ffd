package review

import (
	"math/rand"
	"sort"
	"sync"
)

// Registry maps consumer identities to their sessions. Sessions are created
// on first access and never dropped.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	shuffle  ShuffleFunc
}

// NewRegistry returns an empty registry. A nil shuffle uses rand.Shuffle.
func NewRegistry(shuffle ShuffleFunc) *Registry {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Registry{sessions: make(map[string]*Session), shuffle: shuffle}
}

// GetOrCreate returns the session for consumerID, creating an empty one.
func (r *Registry) GetOrCreate(consumerID string) *Session {
	r.mu.RLock()
	s, ok := r.sessions[consumerID]
	r.mu.RUnlock()
	if ok {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[consumerID]; ok {
		return s
	}
	s = newSession(consumerID)
	r.sessions[consumerID] = s
	return s
}

// Get returns the session for consumerID if one exists.
func (r *Registry) Get(consumerID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[consumerID]
	return s, ok
}

// Shuffle returns the permutation used by Start.
func (r *Registry) Shuffle() ShuffleFunc { return r.shuffle }

// Broadcast purges key from every session except the one owned by except
// and returns the ids of sessions whose current presentation was displaced.
func (r *Registry) Broadcast(key, except string) []string {
	r.mu.RLock()
	targets := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		if id != except {
			targets = append(targets, s)
		}
	}
	r.mu.RUnlock()

	var displaced []string
	for _, s := range targets {
		if s.Purge(key) {
			displaced = append(displaced, s.id)
		}
	}
	sort.Strings(displaced)
	return displaced
}

// Len returns the number of known sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
