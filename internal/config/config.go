// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() builds a Config holding every default.
//   - Load(ctx) layers .env, an optional YAML file and POKER_ env vars on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoder: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// APIBase is the league data API base URL. Empty is allowed at load time;
	// data calls fail with a configuration error until it is set.
	APIBase string `koanf:"api_base"`

	// RequestTimeoutMS bounds a single upstream call, fallback included.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// UpstreamRPS limits outbound requests per second; 0 disables limiting.
	UpstreamRPS float64 `koanf:"upstream_rps"`

	// UpstreamBurst is the limiter bucket size.
	UpstreamBurst int `koanf:"upstream_burst"`

	// WorkerCount bounds concurrent season fetches of an aggregation.
	WorkerCount int `koanf:"worker_count"`

	// CacheSize bounds the upstream response cache; 0 disables caching.
	CacheSize int `koanf:"cache_size"`

	// CacheTTLMS is how long a cached upstream response stays fresh.
	CacheTTLMS int `koanf:"cache_ttl_ms"`

	// MinParticipations is the eligibility threshold for general superlatives.
	MinParticipations int `koanf:"min_participations"`

	// PodiumSize is the number of players shown on the general podium.
	PodiumSize int `koanf:"podium_size"`

	// HiddenPlayerIDs are left out of the general ranking table.
	HiddenPlayerIDs []string `koanf:"hidden_player_ids"`

	// RefreshIntervalMS schedules the home snapshot refresher; 0 disables it.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// PlayersDir holds player photos named <id>.png.
	PlayersDir string `koanf:"players_dir"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MetricsNamespace and MetricsSubsystem prefix every Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels as key=value, e.g. "env=prod".
	MetricsLabels []string `koanf:"metrics_labels"`

	// MetricsBucketsMS overrides the latency histogram buckets; ascending.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		RequestTimeoutMS:   15_000,
		UpstreamRPS:        10,
		UpstreamBurst:      5,
		WorkerCount:        runtime.NumCPU(),
		CacheSize:          256,
		CacheTTLMS:         60_000,
		MinParticipations:  5,
		PodiumSize:         5,
		HiddenPlayerIDs:    []string{"J055"},
		RefreshIntervalMS:  300_000,
		PlayersDir:         "public/players",
		CORSAllowedOrigins: []string{"*"},
		MetricsNamespace:   "poker",
		MetricsSubsystem:   "league",
	}
}

// RequestTimeout returns the upstream timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// CacheTTL returns the response cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// RefreshInterval returns the snapshot refresh period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// ConstLabels returns MetricsLabels as a label map.
func (c *Config) ConstLabels() map[string]string {
	out := make(map[string]string, len(c.MetricsLabels))
	for _, kv := range c.MetricsLabels {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

// Validate checks value ranges and normalises list entries.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.UpstreamRPS < 0:
		return fmt.Errorf("%w: upstream_rps must not be negative", ErrInvalidConfig)
	case c.UpstreamRPS > 0 && c.UpstreamBurst < 1:
		return fmt.Errorf("%w: upstream_burst must be at least 1", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	case c.CacheSize < 0 || c.CacheTTLMS < 0:
		return fmt.Errorf("%w: cache_size and cache_ttl_ms must not be negative", ErrInvalidConfig)
	case c.MinParticipations < 0:
		return fmt.Errorf("%w: min_participations must not be negative", ErrInvalidConfig)
	case c.PodiumSize < 1:
		return fmt.Errorf("%w: podium_size must be at least 1", ErrInvalidConfig)
	case c.RefreshIntervalMS < 0:
		return fmt.Errorf("%w: refresh_interval_ms must not be negative", ErrInvalidConfig)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	c.MetricsLabels = trimAll(c.MetricsLabels)
	for _, kv := range c.MetricsLabels {
		if k, _, ok := strings.Cut(kv, "="); !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: metrics_labels entry %q is not key=value", ErrInvalidConfig, kv)
		}
	}
	for i, b := range c.MetricsBucketsMS {
		if b <= 0 || (i > 0 && b <= c.MetricsBucketsMS[i-1]) {
			return fmt.Errorf("%w: metrics_buckets_ms must be positive and ascending", ErrInvalidConfig)
		}
	}

	c.HiddenPlayerIDs = trimAll(c.HiddenPlayerIDs)
	c.CORSAllowedOrigins = trimAll(c.CORSAllowedOrigins)
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
