package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SHLY_"

// TokenEnvFallback names the variable older .env files carry the fetch
// token in. SHLY_FETCH_TOKEN and a configured token take precedence.
const TokenEnvFallback = "VK_TOKEN"

// FromEnv overlays SHLY_* environment variables onto cfg. Unset variables
// leave the current value untouched.
func FromEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if cfg.Fetch.Token == "" {
		cfg.Fetch.Token = os.Getenv(TokenEnvFallback)
	}
	return nil
}
