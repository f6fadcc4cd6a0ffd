package serverrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	cfgpkg "github.com/MagicGod/shly/internal/config"
	"github.com/MagicGod/shly/internal/runtime"
	grpcserver "github.com/MagicGod/shly/internal/server/grpc"
	httpserver "github.com/MagicGod/shly/internal/server/http"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

// redactedKeys are masked in every log line.
var redactedKeys = []string{"access_token", "token"}

// Options configures Run.
type Options struct {
	Config cfgpkg.Config
	// LogOutputs overrides the console output (e.g. "null" in tests).
	LogOutputs []string
	// Ready, when set, receives the runtime once it is open.
	Ready func(*runtime.Runtime)
}

// NewLogger builds the process logger from the log section of cfg.
func NewLogger(cfg cfgpkg.LogConfig, outputs ...string) (logpkg.Logger, error) {
	return logpkg.ApplyConfig(&logpkg.Config{
		Level:   cfg.Level,
		Format:  cfg.Format,
		Outputs: outputs,
		Redact:  redactedKeys,
	})
}

// Run opens the runtime, serves HTTP (and gRPC when configured) and blocks until ctx is cancelled or a
// server fails.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if cfg.DataDir == "" {
		cfg.DataDir = cfgpkg.DefaultDataDir()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	procLogger, err := NewLogger(cfg.Log, opts.LogOutputs...)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	// Pebble and net/http log through the standard library.
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: procLogger})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			procLogger.Error("close runtime", logpkg.Err(err))
		}
	}()

	procLogger.Info("Starting shly server",
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Str("grpc", cfg.GRPCAddr),
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("backend", cfg.Store.Backend),
		logpkg.Bool("fetch", cfg.Fetch.Enabled),
		logpkg.Str("level", cfg.Log.Level),
		logpkg.Str("format", cfg.Log.Format),
	)
	if opts.Ready != nil {
		opts.Ready(rt)
	}

	hsrv := httpserver.New(rt, procLogger)
	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		if err := hsrv.ListenAndServe(gctx, cfg.HTTPAddr); err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	var gsrv *grpcserver.Server
	if cfg.GRPCAddr != "" {
		gsrv = grpcserver.New(rt, procLogger)
		g.Go(func() error {
			if err := gsrv.ListenAndServe(gctx, cfg.GRPCAddr); err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			return nil
		})
	}
	err = g.Wait()
	hsrv.Close()
	if gsrv != nil {
		gsrv.Close()
	}
	procLogger.Info("shly server stopped")
	return err
}
