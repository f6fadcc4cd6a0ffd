package review

import (
	"sync"

	"github.com/MagicGod/shly/internal/itemstore"
)

// ShuffleFunc permutes n elements through swap, like rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Session is one consumer's review state. pending is FIFO over the order
// fixed at Start; current, when set, is always the head of pending.
type Session struct {
	id string

	mu             sync.Mutex
	pending        []string
	labels         map[string]string
	current        string
	presentationID string
	accepted       []string
	generation     uint64
	// displaced is set when another consumer's verdict purged current. The
	// next action without a presentation id was aimed at the purged item.
	displaced bool
}

func newSession(id string) *Session {
	return &Session{id: id, labels: map[string]string{}}
}

// ID returns the owning consumer identity.
func (s *Session) ID() string { return s.id }

// Start replaces pending with a shuffled copy of the item keys and clears
// accepted and current. An in-flight presentation from before becomes
// orphaned.
func (s *Session) Start(items []itemstore.Item, shuffle ShuffleFunc) {
	keys := make([]string, 0, len(items))
	labels := make(map[string]string, len(items))
	for _, it := range items {
		keys = append(keys, it.Key)
		if it.Label != "" {
			labels[it.Key] = it.Label
		}
	}
	if shuffle != nil {
		shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = keys
	s.labels = labels
	s.accepted = nil
	s.current = ""
	s.presentationID = ""
	s.displaced = false
	s.generation++
}

// PopHead removes and returns the head of pending without judging it.
func (s *Session) PopHead() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popHeadLocked()
}

func (s *Session) popHeadLocked() (string, bool) {
	if len(s.pending) == 0 {
		return "", false
	}
	head := s.pending[0]
	s.pending = s.pending[1:]
	if s.current == head {
		s.current = ""
		s.presentationID = ""
	}
	return head, true
}

// Purge removes key from pending and clears current if it equals key. It
// reports whether an outstanding presentation was displaced.
func (s *Session) Purge(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, k := range s.pending {
		if k == key {
			s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
			break
		}
	}
	if s.current != key {
		return false
	}
	s.current = ""
	s.presentationID = ""
	s.displaced = true
	return true
}

// ticket describes a presentation the distributor must deliver.
type ticket struct {
	consumerID     string
	presentationID string
	key            string
	label          string
	remaining      int
}

// advance drops retired keys from the head of pending. When a head remains
// it becomes current under presentationID; otherwise ok is false and the
// accepted list is returned for the completion report.
func (s *Session) advance(isRetired func(string) bool, presentationID string) (t ticket, accepted []string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.pending) > 0 && isRetired(s.pending[0]) {
		s.pending = s.pending[1:]
	}
	if len(s.pending) == 0 {
		s.current = ""
		s.presentationID = ""
		return ticket{}, append([]string(nil), s.accepted...), false
	}
	head := s.pending[0]
	s.current = head
	s.presentationID = presentationID
	return ticket{
		consumerID:     s.id,
		presentationID: presentationID,
		key:            head,
		label:          s.labels[head],
		remaining:      len(s.pending),
	}, nil, true
}

// targetsLocked reports whether an action carrying presentationID refers to
// the outstanding presentation. An action without an id is refused once
// after a displacement. Callers hold s.mu.
func (s *Session) targetsLocked(presentationID string) bool {
	if presentationID == "" {
		if s.displaced {
			s.displaced = false
			return false
		}
		return true
	}
	if presentationID != s.presentationID {
		return false
	}
	s.displaced = false
	return true
}

// takeCurrent clears and returns current. See targetsLocked for how
// presentationID is matched.
func (s *Session) takeCurrent(presentationID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.targetsLocked(presentationID) || s.current == "" {
		return "", false
	}
	key := s.current
	s.current = ""
	s.presentationID = ""
	return key, true
}

func (s *Session) appendAccepted(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted = append(s.accepted, key)
}

// skipHead pops the head of pending for a skip. ok is false when the skip
// does not target the outstanding presentation; key is empty when the
// queue was already empty.
func (s *Session) skipHead(presentationID string) (key string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.targetsLocked(presentationID) {
		return "", false
	}
	key, _ = s.popHeadLocked()
	return key, true
}

// whilePresenting runs fn with the session locked if presentationID is
// still outstanding, so a purge or advance cannot slip in between the check
// and fn. It reports whether fn ran.
func (s *Session) whilePresenting(presentationID string, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if presentationID == "" || s.presentationID != presentationID {
		return false
	}
	fn()
	return true
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ConsumerID     string   `json:"consumer_id"`
	Pending        []string `json:"pending"`
	Current        string   `json:"current,omitempty"`
	PresentationID string   `json:"presentation_id,omitempty"`
	Accepted       []string `json:"accepted"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ConsumerID:     s.id,
		Pending:        append([]string(nil), s.pending...),
		Current:        s.current,
		PresentationID: s.presentationID,
		Accepted:       append([]string(nil), s.accepted...),
	}
}
