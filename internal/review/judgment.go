package review

import (
	"context"
	"sync"

	logpkg "github.com/MagicGod/shly/pkg/log"
)

// Verdict is a consumer's judgment of its current item. Owner is the session
// the verdict targets; Actor is the identity that sent it. PresentationID,
// when set, must match the outstanding presentation. Without it the verdict
// applies to current, except right after current was purged by another
// consumer, when it is treated as stale.
type Verdict struct {
	Owner          string
	Actor          string
	Action         Action
	PresentationID string
}

// Processor applies verdicts and skips. All retirements and broadcasts go
// through its mutex, so for any key exactly one verdict wins.
type Processor struct {
	mu sync.Mutex

	registry *Registry
	retired  *RetirementSet
	store    ItemStore
	dist     *Distributor
	notifier Notifier
	logger   logpkg.Logger
}

// NewProcessor builds a Processor.
func NewProcessor(registry *Registry, retired *RetirementSet, store ItemStore, dist *Distributor, notifier Notifier, logger logpkg.Logger) *Processor {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &Processor{
		registry: registry,
		retired:  retired,
		store:    store,
		dist:     dist,
		notifier: notifier,
		logger:   logger,
	}
}

// Judge resolves the owner's current item and advances the owner, plus any
// session whose current item was purged by the verdict.
func (p *Processor) Judge(ctx context.Context, v Verdict) error {
	if v.Actor != v.Owner {
		p.logger.Warn("verdict from non-owner rejected",
			logpkg.Consumer(v.Owner), logpkg.Str("actor", v.Actor))
		return ErrIdentityMismatch
	}
	if v.Action != ActionAccept && v.Action != ActionReject {
		return ErrUnknownAction
	}
	sess, ok := p.registry.Get(v.Owner)
	if !ok {
		return ErrStaleAction
	}

	p.mu.Lock()
	key, ok := sess.takeCurrent(v.PresentationID)
	if !ok {
		p.mu.Unlock()
		p.logger.Debug("stale verdict ignored", logpkg.Consumer(v.Owner), logpkg.Str("action", string(v.Action)))
		return ErrStaleAction
	}

	var displaced []string
	switch v.Action {
	case ActionAccept:
		sess.appendAccepted(key)
		if p.retired.Retire(key) {
			displaced = p.registry.Broadcast(key, v.Owner)
		}
	case ActionReject:
		p.retired.Retire(key)
		if err := p.store.Remove(ctx, key); err != nil {
			p.logger.Error("remove rejected item failed", logpkg.Str("key", key), logpkg.Err(err))
		}
		displaced = p.registry.Broadcast(key, v.Owner)
	}
	sess.Purge(key)
	p.mu.Unlock()

	p.logger.Info("verdict applied",
		logpkg.Consumer(v.Owner),
		logpkg.Str("key", key),
		logpkg.Str("action", string(v.Action)),
		logpkg.Int("displaced", len(displaced)),
	)

	text := "Removed from list."
	if v.Action == ActionAccept {
		text = "Added!\n" + key
	}
	if err := p.notifier.Notice(ctx, v.Owner, text); err != nil {
		p.logger.Debug("notice delivery failed", logpkg.Consumer(v.Owner), logpkg.Err(err))
	}

	p.dist.PresentNext(ctx, v.Owner)
	for _, id := range displaced {
		p.dist.PresentNext(ctx, id)
	}
	return nil
}

// Skip drops the head of the consumer's queue without a verdict and
// presents the next item. The skipped key stays available to everyone else.
// presentationID is matched like Verdict.PresentationID.
func (p *Processor) Skip(ctx context.Context, consumerID, presentationID string) error {
	sess := p.registry.GetOrCreate(consumerID)
	key, ok := sess.skipHead(presentationID)
	if !ok {
		p.logger.Debug("stale skip ignored", logpkg.Consumer(consumerID))
		return ErrStaleAction
	}
	if key != "" {
		p.logger.Debug("item skipped", logpkg.Consumer(consumerID), logpkg.Str("key", key))
	}
	p.dist.PresentNext(ctx, consumerID)
	return nil
}
