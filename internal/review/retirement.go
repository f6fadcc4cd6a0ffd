package review

import "sync"

// RetirementSet records every key that received a verdict. Keys are never
// removed for the lifetime of the set.
type RetirementSet struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewRetirementSet returns an empty set.
func NewRetirementSet() *RetirementSet {
	return &RetirementSet{keys: make(map[string]struct{})}
}

// IsRetired reports whether key has been retired.
func (r *RetirementSet) IsRetired(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.keys[key]
	return ok
}

// Retire inserts key and reports whether this call performed the first
// insertion. Exactly one of any number of concurrent callers sees true.
func (r *RetirementSet) Retire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key]; ok {
		return false
	}
	r.keys[key] = struct{}{}
	return true
}

// Len returns the number of retired keys.
func (r *RetirementSet) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}
