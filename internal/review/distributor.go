package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MagicGod/shly/internal/itemstore"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

const defaultFetchTimeout = 45 * time.Second

// DegradedNotice prefixes captions of presentations without media.
const DegradedNotice = "could not get presentation for this item"

// Distributor presents the next item of a session. Fetching and delivery
// run on a goroutine per presentation so a slow fetch only delays its own
// consumer.
type Distributor struct {
	registry     *Registry
	retired      *RetirementSet
	fetcher      Fetcher
	notifier     Notifier
	logger       logpkg.Logger
	fetchTimeout time.Duration
	newID        func() string

	wg sync.WaitGroup
}

// DistributorOptions configures a Distributor. Fetcher may be nil, in which
// case every presentation is text-only.
type DistributorOptions struct {
	Registry     *Registry
	Retired      *RetirementSet
	Fetcher      Fetcher
	Notifier     Notifier
	Logger       logpkg.Logger
	FetchTimeout time.Duration
}

// NewDistributor builds a Distributor.
func NewDistributor(opts DistributorOptions) *Distributor {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &Distributor{
		registry:     opts.Registry,
		retired:      opts.Retired,
		fetcher:      opts.Fetcher,
		notifier:     opts.Notifier,
		logger:       logger,
		fetchTimeout: opts.FetchTimeout,
		newID:        func() string { return uuid.New().String() },
	}
}

// PresentNext drops retired keys from the head of the consumer's queue and
// presents the new head, or reports completion when the queue is empty. It
// returns once current is set; the presentation itself is delivered
// asynchronously.
func (d *Distributor) PresentNext(ctx context.Context, consumerID string) {
	sess := d.registry.GetOrCreate(consumerID)
	t, accepted, ok := sess.advance(d.retired.IsRetired, d.newID())
	if !ok {
		c := Completion{ConsumerID: consumerID, AcceptedCount: len(accepted), Accepted: accepted}
		if err := d.notifier.Complete(ctx, c); err != nil {
			d.logger.Warn("completion delivery failed", logpkg.Consumer(consumerID), logpkg.Err(err))
		}
		d.logger.Info("review complete", logpkg.Consumer(consumerID), logpkg.Int("accepted", len(accepted)))
		return
	}

	d.logger.Debug("presenting item",
		logpkg.Consumer(consumerID),
		logpkg.Str("key", t.key),
		logpkg.Str("presentation_id", t.presentationID),
		logpkg.Int("remaining", t.remaining),
	)

	// Delivery outlives the request that triggered it.
	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(base, sess, t)
	}()
}

func (d *Distributor) deliver(ctx context.Context, sess *Session, t ticket) {
	if err := d.notifier.Notice(ctx, t.consumerID, "Loading profile @"+itemstore.ScreenName(t.key)+"..."); err != nil {
		d.logger.Debug("notice delivery failed", logpkg.Consumer(t.consumerID), logpkg.Err(err))
	}

	res, err := d.fetch(ctx, t.key)
	if err != nil {
		d.logger.Warn("fetch failed; presenting text only",
			logpkg.Consumer(t.consumerID), logpkg.Str("key", t.key), logpkg.Err(err))
	}

	p := Presentation{
		ConsumerID:     t.consumerID,
		PresentationID: t.presentationID,
		Key:            t.key,
		Label:          t.label,
		Media:          res.Media,
		Profile:        res.Profile,
		Degraded:       res.Media == nil,
		Remaining:      t.remaining,
		Actions:        []Action{ActionAccept, ActionReject},
	}
	p.Caption = caption(p)
	delivered := sess.whilePresenting(t.presentationID, func() {
		if err := d.notifier.Present(ctx, p); err != nil {
			d.logger.Warn("presentation delivery failed",
				logpkg.Consumer(t.consumerID), logpkg.Str("key", t.key), logpkg.Err(err))
		}
	})
	if !delivered {
		d.logger.Debug("presentation orphaned before delivery",
			logpkg.Consumer(t.consumerID), logpkg.Str("key", t.key))
	}
}

func (d *Distributor) fetch(ctx context.Context, key string) (FetchResult, error) {
	if d.fetcher == nil {
		return FetchResult{}, nil
	}
	fctx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
	defer cancel()
	res, err := d.fetcher.Fetch(fctx, key)
	if err != nil {
		if !errors.Is(err, ErrFetchFailed) {
			err = fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
		return FetchResult{}, err
	}
	return res, nil
}

// Wait blocks until every in-flight delivery has finished.
func (d *Distributor) Wait() { d.wg.Wait() }

// caption renders the text shown with a presentation.
func caption(p Presentation) string {
	var b strings.Builder
	if p.Degraded {
		b.WriteString(DegradedNotice)
		b.WriteByte('\n')
	}
	name := p.Label
	if p.Profile != nil && p.Profile.DisplayName != "" {
		name = p.Profile.DisplayName
	}
	if p.Profile != nil && p.Profile.Restricted {
		b.WriteString("[closed] ")
	}
	if name != "" {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	b.WriteString(p.Key)
	fmt.Fprintf(&b, "\n\n%d remaining in queue", p.Remaining)
	return b.String()
}
