package upstream

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/okian/pokerleague/internal/adapters/cache"
	"github.com/okian/pokerleague/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for both strategies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every single upstream attempt. 0 or less disables the
// bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit limits outbound requests to rps per second with the given
// burst. rps of 0 or less removes the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache stores successful response bodies keyed by request URL.
func WithCache(cc cache.Cache) Option {
	return func(c *Client) {
		c.cache = cc
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithRegistry shares a callback registry between clients.
func WithRegistry(r *Registry) Option {
	return func(c *Client) {
		if r != nil {
			c.registry = r
		}
	}
}
