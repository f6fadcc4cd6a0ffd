package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/MagicGod/shly/internal/review"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

// Event types.
const (
	EventPresent  = "present"
	EventComplete = "complete"
	EventNotice   = "notice"
)

const defaultBuffer = 16

// Event is one message for a consumer. Data is a review.Presentation,
// review.Completion or Notice depending on Type.
type Event struct {
	ID   uint64 `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Notice is a short text message.
type Notice struct {
	Text string `json:"text"`
}

// Subscription receives events for one consumer until closed.
type Subscription struct {
	C <-chan Event

	ch         chan Event
	hub        *Hub
	consumerID string
	once       sync.Once
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Options configures a Hub.
type Options struct {
	// Buffer is the per-subscriber channel size. Events for a full
	// subscriber are dropped.
	Buffer int
	Logger logpkg.Logger
}

// Hub implements review.Notifier.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	latest map[string]Event

	seq     atomic.Uint64
	dropped atomic.Uint64
	buffer  int
	logger  logpkg.Logger
}

var _ review.Notifier = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub(opts Options) *Hub {
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		latest: make(map[string]Event),
		buffer: opts.Buffer,
		logger: opts.Logger.With(logpkg.Component("notify")),
	}
}

// Subscribe attaches a subscriber for consumerID. If the consumer has an
// outstanding presentation it is queued first.
func (h *Hub) Subscribe(consumerID string) *Subscription {
	ch := make(chan Event, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h, consumerID: consumerID}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[consumerID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[consumerID] = set
	}
	set[s] = struct{}{}
	if ev, ok := h.latest[consumerID]; ok {
		ch <- ev
	}
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[s.consumerID]
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.consumerID)
	}
	close(s.ch)
}

// Present records p as the consumer's outstanding item and publishes it.
func (h *Hub) Present(_ context.Context, p review.Presentation) error {
	h.publish(p.ConsumerID, EventPresent, p, true)
	return nil
}

// Complete clears the outstanding item and publishes the report.
func (h *Hub) Complete(_ context.Context, c review.Completion) error {
	h.publish(c.ConsumerID, EventComplete, c, false)
	return nil
}

// Notice publishes a text message.
func (h *Hub) Notice(_ context.Context, consumerID, text string) error {
	h.publish(consumerID, EventNotice, Notice{Text: text}, false)
	return nil
}

func (h *Hub) publish(consumerID, typ string, data any, keep bool) {
	ev := Event{ID: h.seq.Add(1), Type: typ, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case keep:
		h.latest[consumerID] = ev
	case typ == EventComplete:
		delete(h.latest, consumerID)
	}
	for s := range h.subs[consumerID] {
		select {
		case s.ch <- ev:
		default:
			h.dropped.Add(1)
			h.logger.Warn("subscriber buffer full; event dropped",
				logpkg.Consumer(consumerID), logpkg.Str("type", typ))
		}
	}
}

// Outstanding returns the latest presentation published for consumerID.
func (h *Hub) Outstanding(consumerID string) (review.Presentation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev, ok := h.latest[consumerID]
	if !ok {
		return review.Presentation{}, false
	}
	p, ok := ev.Data.(review.Presentation)
	return p, ok
}

// Subscribers returns the number of attached subscribers for consumerID.
func (h *Hub) Subscribers(consumerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[consumerID])
}

// Dropped returns how many events were discarded for slow subscribers.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }
