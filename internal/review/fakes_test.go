package review

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MagicGod/shly/internal/itemstore"
)

type memStore struct {
	mu    sync.Mutex
	items []itemstore.Item
	err   error
}

func newMemStore(keys ...string) *memStore {
	s := &memStore{}
	for _, k := range keys {
		s.items = append(s.items, itemstore.Item{Key: k})
	}
	return s
}

func (s *memStore) ListAll(context.Context) ([]itemstore.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]itemstore.Item(nil), s.items...), nil
}

func (s *memStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.Key == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Key)
	}
	return out
}

type recordingNotifier struct {
	mu            sync.Mutex
	presentations []Presentation
	completions   []Completion
	notices       map[string][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notices: map[string][]string{}}
}

func (n *recordingNotifier) Present(_ context.Context, p Presentation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.presentations = append(n.presentations, p)
	return nil
}

func (n *recordingNotifier) Complete(_ context.Context, c Completion) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completions = append(n.completions, c)
	return nil
}

func (n *recordingNotifier) Notice(_ context.Context, consumerID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices[consumerID] = append(n.notices[consumerID], text)
	return nil
}

// presented returns the keys presented to consumerID, in delivery order.
func (n *recordingNotifier) presented(consumerID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, p := range n.presentations {
		if p.ConsumerID == consumerID {
			out = append(out, p.Key)
		}
	}
	return out
}

func (n *recordingNotifier) last(consumerID string) (Presentation, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.presentations) - 1; i >= 0; i-- {
		if n.presentations[i].ConsumerID == consumerID {
			return n.presentations[i], true
		}
	}
	return Presentation{}, false
}

func (n *recordingNotifier) completionsFor(consumerID string) []Completion {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Completion
	for _, c := range n.completions {
		if c.ConsumerID == consumerID {
			out = append(out, c)
		}
	}
	return out
}

type stubFetcher struct {
	fail bool
}

func (f stubFetcher) Fetch(_ context.Context, key string) (FetchResult, error) {
	if f.fail {
		return FetchResult{}, errors.New("upstream timeout")
	}
	return FetchResult{
		Media:   &Media{Data: []byte("jpeg:" + key), ContentType: "image/jpeg"},
		Profile: &Profile{DisplayName: "Name " + key},
	}, nil
}

// keepOrder leaves items in store order.
func keepOrder(int, func(i, j int)) {}

type harness struct {
	engine   *Engine
	store    *memStore
	notifier *recordingNotifier
}

func newHarness(t *testing.T, shuffle ShuffleFunc, keys ...string) *harness {
	t.Helper()
	if shuffle == nil {
		shuffle = keepOrder
	}
	store := newMemStore(keys...)
	notifier := newRecordingNotifier()
	e := NewEngine(Options{
		Store:    store,
		Fetcher:  stubFetcher{},
		Notifier: notifier,
		Shuffle:  shuffle,
	})
	t.Cleanup(e.Wait)
	return &harness{engine: e, store: store, notifier: notifier}
}

func (h *harness) judge(t *testing.T, consumer string, action Action) error {
	t.Helper()
	err := h.engine.Judge(context.Background(), Verdict{Owner: consumer, Actor: consumer, Action: action})
	h.engine.Wait()
	return err
}

func (h *harness) start(t *testing.T, consumer string) int {
	t.Helper()
	n := h.engine.Start(context.Background(), consumer)
	h.engine.Wait()
	return n
}
