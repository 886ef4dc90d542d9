package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "POKER_"
	envFileKey   = "POKER_CONFIG"
	legacyAPIEnv = "VITE_API_BASE"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if POKER_CONFIG is set
//  3. env (prefix POKER_)
//
// A .env file in the working directory is read first; it never overrides
// variables already present in the environment. VITE_API_BASE is honoured
// when api_base is not set by any other layer.
func Load(_ context.Context) (*Config, error) {
	_ = godotenv.Load()

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envFileKey); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %w", ErrLoadConfig, path, err)
		}
	}

	// POKER_API_BASE -> api_base. Keys stay flat to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	cfg := *base
	// Decoding onto a non-nil slice only overwrites leading elements, so list
	// defaults are dropped whenever a layer provides the key.
	for key, dst := range map[string]*[]string{
		"hidden_player_ids":    &cfg.HiddenPlayerIDs,
		"cors_allowed_origins": &cfg.CORSAllowedOrigins,
		"metrics_labels":       &cfg.MetricsLabels,
	} {
		if k.Exists(key) {
			*dst = nil
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.APIBase == "" {
		cfg.APIBase = os.Getenv(legacyAPIEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
