package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clientcmd "github.com/MagicGod/shly/internal/cmd/client"
	serverrun "github.com/MagicGod/shly/internal/cmd/server"
	cfgpkg "github.com/MagicGod/shly/internal/config"
	logpkg "github.com/MagicGod/shly/pkg/log"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	level := os.Getenv("SHLY_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	rootCmd := &cobra.Command{
		Use:           "shly",
		Short:         "Shared review queue",
		Long:          "shly hands out items from a shared list to many reviewers. Every item is judged once; a verdict by anyone retires it for everybody.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", os.Getenv("SHLY_CONFIG"), "Config file (.json, .yaml)")

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the shly HTTP server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("http", "", "HTTP listen address (overrides config)")
	serverStartCmd.Flags().String("grpc", "", "gRPC listen address (overrides config; empty disables)")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("backend", "", "Item store backend: file|pebble|sqlite")
	serverStartCmd.Flags().String("file", "", "Item list file for the file backend")
	serverStartCmd.Flags().Bool("no-fetch", false, "Disable profile lookups (text-only presentations)")
	serverStartCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", "", "Log format: text|json")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	rootCmd.AddCommand(clientcmd.NewReviewCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewItemsCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", logpkg.Err(err))
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, SHLY_* variables and flags.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfgpkg.FromEnv(&cfg); err != nil {
		return cfgpkg.Config{}, fmt.Errorf("read environment: %w", err)
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("http"); v != "" {
		cfg.HTTPAddr = v
	}
	if flags.Changed("grpc") {
		cfg.GRPCAddr, _ = flags.GetString("grpc")
	}
	if v, _ := flags.GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := flags.GetString("backend"); v != "" {
		cfg.Store.Backend = v
	}
	if v, _ := flags.GetString("file"); v != "" {
		cfg.Store.File = v
	}
	if v, _ := flags.GetBool("no-fetch"); v {
		cfg.Fetch.Enabled = false
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	return cfg, cfg.Validate()
}

func apiURL() string {
	if v := os.Getenv("SHLY_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
