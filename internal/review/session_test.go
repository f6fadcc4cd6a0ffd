package review

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MagicGod/shly/internal/itemstore"
)

func items(keys ...string) []itemstore.Item {
	out := make([]itemstore.Item, 0, len(keys))
	for _, k := range keys {
		out = append(out, itemstore.Item{Key: k})
	}
	return out
}

func TestRetireFirstInsertionWinsOnce(t *testing.T) {
	r := NewRetirementSet()
	var firsts int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Retire("k") {
				atomic.AddInt32(&firsts, 1)
			}
		}()
	}
	wg.Wait()
	if firsts != 1 {
		t.Fatalf("expected exactly one first retirement, got %d", firsts)
	}
	if !r.IsRetired("k") || r.Len() != 1 {
		t.Fatalf("retired state: %v %d", r.IsRetired("k"), r.Len())
	}
	if r.Retire("k") {
		t.Fatalf("retire must stay idempotent")
	}
}

func TestSessionStartResets(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b", "c"), func(n int, swap func(i, j int)) { swap(0, n-1) })
	snap := s.Snapshot()
	if got := snap.Pending; len(got) != 3 || got[0] != "c" || got[2] != "a" {
		t.Fatalf("pending %v", got)
	}

	if _, _, ok := s.advance(func(string) bool { return false }, "p1"); !ok {
		t.Fatalf("advance on non-empty queue")
	}
	s.appendAccepted("x")
	s.Start(items("d"), keepOrder)
	snap = s.Snapshot()
	if snap.Current != "" || snap.PresentationID != "" || len(snap.Accepted) != 0 {
		t.Fatalf("start should clear current and accepted: %+v", snap)
	}
	if s.whilePresenting("p1", func() { t.Fatalf("orphaned presentation delivered") }) {
		t.Fatalf("old presentation should be orphaned")
	}
}

func TestSessionShuffleIsPermutation(t *testing.T) {
	reg := NewRegistry(nil)
	s := reg.GetOrCreate("u1")
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	s.Start(items(keys...), reg.Shuffle())
	got := s.Snapshot().Pending
	if len(got) != len(keys) {
		t.Fatalf("pending %v", got)
	}
	seen := map[string]bool{}
	for _, k := range got {
		seen[k] = true
	}
	for _, k := range keys {
		if !seen[k] {
			t.Fatalf("missing %s in %v", k, got)
		}
	}
}

func TestSessionPurge(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b", "c"), keepOrder)
	if s.Purge("b") {
		t.Fatalf("purging a non-current key displaces nothing")
	}
	if got := s.Snapshot().Pending; len(got) != 2 || got[1] != "c" {
		t.Fatalf("pending %v", got)
	}
	s.advance(func(string) bool { return false }, "p1")
	if !s.Purge("a") {
		t.Fatalf("purging the current key should displace it")
	}
	snap := s.Snapshot()
	if snap.Current != "" || len(snap.Pending) != 1 {
		t.Fatalf("after purge: %+v", snap)
	}
}

func TestSessionAdvanceSkipsRetiredHeads(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b", "c"), keepOrder)
	retired := map[string]bool{"a": true, "b": true}
	tk, _, ok := s.advance(func(k string) bool { return retired[k] }, "p1")
	if !ok || tk.key != "c" || tk.remaining != 1 {
		t.Fatalf("ticket %+v ok=%v", tk, ok)
	}
	retired["c"] = true
	s.appendAccepted("z")
	_, accepted, ok := s.advance(func(k string) bool { return retired[k] }, "p2")
	if ok {
		t.Fatalf("queue should be exhausted")
	}
	if len(accepted) != 1 || accepted[0] != "z" {
		t.Fatalf("accepted %v", accepted)
	}
}

func TestPopHeadClearsCurrent(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b"), keepOrder)
	s.advance(func(string) bool { return false }, "p1")
	k, ok := s.PopHead()
	if !ok || k != "a" {
		t.Fatalf("pop %q %v", k, ok)
	}
	if _, ok := s.takeCurrent(""); ok {
		t.Fatalf("skip must leave no current")
	}
}

func TestTakeCurrentMatchesPresentation(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a"), keepOrder)
	s.advance(func(string) bool { return false }, "p1")
	if _, ok := s.takeCurrent("other"); ok {
		t.Fatalf("mismatched presentation must not resolve")
	}
	k, ok := s.takeCurrent("p1")
	if !ok || k != "a" {
		t.Fatalf("take %q %v", k, ok)
	}
	if _, ok := s.takeCurrent("p1"); ok {
		t.Fatalf("second take must be stale")
	}
}

func TestIDLessActionAfterDisplacementIsStaleOnce(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b", "c"), keepOrder)
	s.advance(func(string) bool { return false }, "p1")
	if !s.Purge("a") {
		t.Fatalf("purge should displace a")
	}
	s.advance(func(string) bool { return false }, "p2")

	if _, ok := s.takeCurrent(""); ok {
		t.Fatalf("verdict without id after displacement must be stale")
	}
	if got := s.Snapshot().Current; got != "b" {
		t.Fatalf("stale verdict changed current to %q", got)
	}
	k, ok := s.takeCurrent("")
	if !ok || k != "b" {
		t.Fatalf("second verdict without id: %q %v", k, ok)
	}
}

func TestMatchingIDClearsDisplacement(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b", "c"), keepOrder)
	s.advance(func(string) bool { return false }, "p1")
	s.Purge("a")
	s.advance(func(string) bool { return false }, "p2")

	if k, ok := s.skipHead("p2"); !ok || k != "b" {
		t.Fatalf("skip with matching id: %q %v", k, ok)
	}
	s.advance(func(string) bool { return false }, "p3")
	if k, ok := s.takeCurrent(""); !ok || k != "c" {
		t.Fatalf("displacement should be cleared by a matching id: %q %v", k, ok)
	}
}

func TestSkipHeadMatchesPresentation(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b"), keepOrder)
	s.advance(func(string) bool { return false }, "p1")
	if _, ok := s.skipHead("other"); ok {
		t.Fatalf("mismatched skip must be stale")
	}
	if got := s.Snapshot().Pending; len(got) != 2 {
		t.Fatalf("stale skip popped: %v", got)
	}
	if k, ok := s.skipHead(""); !ok || k != "a" {
		t.Fatalf("skip %q %v", k, ok)
	}
}

func TestWhilePresentingHoldsOffPurge(t *testing.T) {
	s := newSession("u1")
	s.Start(items("a", "b"), keepOrder)
	s.advance(func(string) bool { return false }, "p1")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan bool)
	go func() {
		done <- s.whilePresenting("p1", func() {
			close(entered)
			<-release
		})
	}()
	<-entered
	purged := make(chan bool)
	go func() { purged <- s.Purge("a") }()
	select {
	case <-purged:
		t.Fatalf("purge ran while the presentation was being published")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	if !<-done {
		t.Fatalf("outstanding presentation should be delivered")
	}
	if !<-purged {
		t.Fatalf("purge after publish should displace a")
	}
	if s.whilePresenting("p1", func() {}) {
		t.Fatalf("purged presentation must not be delivered again")
	}
}

func TestBroadcastSkipsOwnerAndReportsDisplaced(t *testing.T) {
	reg := NewRegistry(keepOrder)
	for _, id := range []string{"u1", "u2", "u3"} {
		s := reg.GetOrCreate(id)
		s.Start(items("a", "b"), keepOrder)
	}
	u2, _ := reg.Get("u2")
	u2.advance(func(string) bool { return false }, "p2")

	displaced := reg.Broadcast("a", "u1")
	if len(displaced) != 1 || displaced[0] != "u2" {
		t.Fatalf("displaced %v", displaced)
	}
	u1, _ := reg.Get("u1")
	if got := u1.Snapshot().Pending; len(got) != 2 {
		t.Fatalf("owner should be untouched by broadcast: %v", got)
	}
	u3, _ := reg.Get("u3")
	if got := u3.Snapshot().Pending; len(got) != 1 || got[0] != "b" {
		t.Fatalf("u3 pending %v", got)
	}
}
