package review

import (
	"context"
	"time"

	"github.com/MagicGod/shly/internal/itemstore"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

// Options configures an Engine.
type Options struct {
	Store        ItemStore
	Fetcher      Fetcher
	Notifier     Notifier
	Logger       logpkg.Logger
	Shuffle      ShuffleFunc
	FetchTimeout time.Duration
}

// Engine wires the retirement set, registry, distributor and processor and
// exposes the consumer control surface.
type Engine struct {
	store     ItemStore
	retired   *RetirementSet
	registry  *Registry
	dist      *Distributor
	processor *Processor
	logger    logpkg.Logger
}

// NewEngine builds an Engine over the given collaborators.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	retired := NewRetirementSet()
	registry := NewRegistry(opts.Shuffle)
	dist := NewDistributor(DistributorOptions{
		Registry:     registry,
		Retired:      retired,
		Fetcher:      opts.Fetcher,
		Notifier:     opts.Notifier,
		Logger:       logger,
		FetchTimeout: opts.FetchTimeout,
	})
	return &Engine{
		store:     opts.Store,
		retired:   retired,
		registry:  registry,
		dist:      dist,
		processor: NewProcessor(registry, retired, opts.Store, dist, opts.Notifier, logger),
		logger:    logger,
	}
}

// Start loads every non-retired item into the consumer's session in random
// order and presents the first one. It always resets the session. A zero
// count means no items are available and is reported to the notifier as an
// empty completion; an unreadable store counts as empty.
func (e *Engine) Start(ctx context.Context, consumerID string) int {
	items, err := e.store.ListAll(ctx)
	if err != nil {
		e.logger.Warn("item store unavailable; treating as empty", logpkg.Consumer(consumerID), logpkg.Err(err))
		items = nil
	}
	eligible := items[:0:0]
	for _, it := range items {
		if !e.retired.IsRetired(it.Key) {
			eligible = append(eligible, it)
		}
	}

	sess := e.registry.GetOrCreate(consumerID)
	sess.Start(eligible, e.registry.Shuffle())
	e.logger.Info("session started", logpkg.Consumer(consumerID), logpkg.Int("queued", len(eligible)))
	e.dist.PresentNext(ctx, consumerID)
	return len(eligible)
}

// Judge applies a verdict. See Processor.Judge.
func (e *Engine) Judge(ctx context.Context, v Verdict) error {
	return e.processor.Judge(ctx, v)
}

// Skip advances without a verdict. See Processor.Skip.
func (e *Engine) Skip(ctx context.Context, consumerID, presentationID string) error {
	return e.processor.Skip(ctx, consumerID, presentationID)
}

// Status is the consumer-facing summary.
type Status struct {
	ConsumerID     string `json:"consumer_id"`
	Pending        int    `json:"pending"`
	Accepted       int    `json:"accepted"`
	Retired        int    `json:"retired"`
	Current        string `json:"current,omitempty"`
	PresentationID string `json:"presentation_id,omitempty"`
}

// Status reports queue sizes for consumerID and the global retired count.
func (e *Engine) Status(consumerID string) Status {
	snap := e.registry.GetOrCreate(consumerID).Snapshot()
	return Status{
		ConsumerID:     consumerID,
		Pending:        len(snap.Pending),
		Accepted:       len(snap.Accepted),
		Retired:        e.retired.Len(),
		Current:        snap.Current,
		PresentationID: snap.PresentationID,
	}
}

// Accepted returns the consumer's accepted keys in verdict order.
func (e *Engine) Accepted(consumerID string) []string {
	return e.registry.GetOrCreate(consumerID).Snapshot().Accepted
}

// Snapshot returns the full session state for consumerID.
func (e *Engine) Snapshot(consumerID string) Snapshot {
	return e.registry.GetOrCreate(consumerID).Snapshot()
}

// Items lists the backing store for admin views.
func (e *Engine) Items(ctx context.Context) ([]itemstore.Item, error) {
	return e.store.ListAll(ctx)
}

// Retired reports whether key has been judged by anyone.
func (e *Engine) Retired(key string) bool { return e.retired.IsRetired(key) }

// Sessions returns the number of consumers seen so far.
func (e *Engine) Sessions() int { return e.registry.Len() }

// Wait blocks until in-flight presentations are delivered.
func (e *Engine) Wait() { e.dist.Wait() }
