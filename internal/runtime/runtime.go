package runtime

import (
	"context"
	"errors"
	"fmt"

	cfgpkg "github.com/MagicGod/shly/internal/config"
	"github.com/MagicGod/shly/internal/fetch"
	"github.com/MagicGod/shly/internal/itemstore"
	"github.com/MagicGod/shly/internal/notify"
	"github.com/MagicGod/shly/internal/review"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger

	// Store overrides the backend selected by Config.Store.
	Store itemstore.Store
	// Fetcher overrides the VK fetcher built from Config.Fetch.
	Fetcher review.Fetcher
	// Shuffle overrides the queue permutation (tests).
	Shuffle review.ShuffleFunc
}

// Runtime owns the long-lived components of a single-node instance.
type Runtime struct {
	config cfgpkg.Config
	store  itemstore.Store
	hub    *notify.Hub
	engine *review.Engine
	logger logpkg.Logger
}

// Open initializes storage and builds the review engine.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}

	store := opts.Store
	if store == nil {
		s, err := itemstore.Open(opts.Config)
		if err != nil {
			return nil, fmt.Errorf("open item store: %w", err)
		}
		store = s
	}

	fetcher := opts.Fetcher
	if fetcher == nil && opts.Config.Fetch.Enabled {
		fo := fetch.OptionsFromConfig(opts.Config.Fetch)
		fo.Logger = logger
		fetcher = fetch.NewVK(fo)
	}

	hub := notify.NewHub(notify.Options{Logger: logger})
	engine := review.NewEngine(review.Options{
		Store:    store,
		Fetcher:  fetcher,
		Notifier: hub,
		Logger:   logger.With(logpkg.Component("review")),
		Shuffle:  opts.Shuffle,
	})

	logger.Info("runtime opened",
		logpkg.Str("backend", opts.Config.Store.Backend),
		logpkg.Bool("fetch", fetcher != nil),
	)
	return &Runtime{config: opts.Config, store: store, hub: hub, engine: engine, logger: logger}, nil
}

// Close waits for in-flight presentations and closes the store.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	r.engine.Wait()
	err := r.store.Close()
	r.store = nil
	return err
}

// CheckHealth verifies the item store can be read.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.store == nil {
		return errors.New("store not open")
	}
	if _, err := r.store.ListAll(ctx); err != nil {
		return err
	}
	return nil
}

// Engine returns the review engine.
func (r *Runtime) Engine() *review.Engine { return r.engine }

// Hub returns the notification hub consumers subscribe to.
func (r *Runtime) Hub() *notify.Hub { return r.hub }

// Store exposes the item store for admin operations (import, listing).
func (r *Runtime) Store() itemstore.Store { return r.store }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
