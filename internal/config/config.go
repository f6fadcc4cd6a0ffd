package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendPebble = "pebble"
	BackendSQLite = "sqlite"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr string      `json:"httpAddr" yaml:"httpAddr" env:"HTTP_ADDR"`
	// GRPCAddr is the gRPC listen address. Empty disables the gRPC server.
	GRPCAddr string      `json:"grpcAddr" yaml:"grpcAddr" env:"GRPC_ADDR"`
	DataDir  string      `json:"dataDir" yaml:"dataDir" env:"DATA_DIR"`
	Store    StoreConfig `json:"store" yaml:"store" envPrefix:"STORE_"`
	Fetch    FetchConfig `json:"fetch" yaml:"fetch" envPrefix:"FETCH_"`
	Log      LogConfig   `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// StoreConfig selects and locates the backing item list.
type StoreConfig struct {
	// Backend is one of file|pebble|sqlite.
	Backend string `json:"backend" yaml:"backend" env:"BACKEND"`
	// File is the text list used by the file backend and as the default
	// import source.
	File string `json:"file" yaml:"file" env:"FILE"`
	// Path is the pebble directory or sqlite file. Empty derives it from DataDir.
	Path string `json:"path" yaml:"path" env:"PATH"`
}

// FetchConfig configures the profile lookup collaborator.
type FetchConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	APIBase    string `json:"apiBase" yaml:"apiBase" env:"API_BASE"`
	APIVersion string `json:"apiVersion" yaml:"apiVersion" env:"API_VERSION"`
	Token      string `json:"token" yaml:"token" env:"TOKEN"`
	TimeoutMs  int    `json:"timeoutMs" yaml:"timeoutMs" env:"TIMEOUT_MS"`
}

// LogConfig mirrors log.Config for file/env loading.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" env:"LEVEL"`
	Format string `json:"format" yaml:"format" env:"FORMAT"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":50051",
		Store: StoreConfig{
			Backend: BackendFile,
			File:    "profiles.txt",
		},
		Fetch: FetchConfig{
			Enabled:    true,
			APIBase:    "https://api.vk.com",
			APIVersion: "5.199",
			TimeoutMs:  15000,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse json config: %w", err)
		}
	}
	return cfg, nil
}

// Validate reports configuration that cannot be served.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.File == "" {
			return fmt.Errorf("store.file is required for the file backend")
		}
	case BackendPebble, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q; use file|pebble|sqlite", c.Store.Backend)
	}
	if c.Fetch.Enabled && c.Fetch.APIBase == "" {
		return fmt.Errorf("fetch.apiBase is required when fetch is enabled")
	}
	return nil
}

// StorePath returns the effective pebble/sqlite location.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	dir := c.DataDir
	if dir == "" {
		dir = DefaultDataDir()
	}
	if c.Store.Backend == BackendSQLite {
		return filepath.Join(dir, "items.db")
	}
	return filepath.Join(dir, "store")
}
