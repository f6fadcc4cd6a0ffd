// Package config provides loading and environment overlay for shly
// configuration. It exposes a Default() baseline, JSON/YAML file loading and
// a SHLY_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/shly.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	_ = config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { /* handle */ }
package config
