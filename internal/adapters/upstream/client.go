// Package upstream talks to the spreadsheet-backed league API.
//
// Every call first tries a plain JSON GET. On any failure the same request is
// repeated once with a callback parameter and the wrapped body is delivered
// through a one-shot callback registry (JSONP). There are no further retries.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/okian/pokerleague/internal/adapters/cache"
	"github.com/okian/pokerleague/pkg/logger"
	"github.com/okian/pokerleague/pkg/metrics"
)

const (
	tracerName     = "github.com/okian/pokerleague/internal/adapters/upstream"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 16 << 20

	strategyFetch = "fetch"
	strategyJSONP = "jsonp"
	strategyCache = "cache"
)

// Client fetches league data. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	cache    cache.Cache
	registry *Registry
	logger   logger.Logger
	tracer   trace.Tracer
}

// NewClient creates a client for baseURL. An empty baseURL is accepted; every
// data call then fails with ErrMissingBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("upstream")
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// BaseURL returns the configured base URL without its trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildURL renders base?k=v for the non-empty params, sorted by key.
func (c *Client) buildURL(params map[string]string) (string, error) {
	if c.baseURL == "" {
		return "", ErrMissingBaseURL
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	return c.baseURL + "?" + q.Encode(), nil
}

// get runs one logical call: cache, primary fetch, then the callback
// fallback. The returned body is valid JSON.
func (c *Client) get(ctx context.Context, action string, params map[string]string) (body []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "upstream."+action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("league.action", action)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if params == nil {
		params = map[string]string{}
	}
	params["action"] = action
	rawURL, err := c.buildURL(params)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, rawURL); ok {
			span.SetAttributes(attribute.String("league.strategy", strategyCache))
			metrics.RecordUpstreamRequest(action, strategyCache, "ok", 0)
			return cached, nil
		}
	}

	start := time.Now()
	body, primaryErr := c.fetch(ctx, rawURL)
	metrics.RecordUpstreamRequest(action, strategyFetch, outcome(primaryErr), msSince(start))
	if primaryErr == nil {
		span.SetAttributes(attribute.String("league.strategy", strategyFetch))
		c.store(ctx, rawURL, body)
		return body, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", action, primaryErr)
	}

	c.logger.Debug(ctx, "primary fetch failed, retrying with callback",
		logger.String("action", action), logger.Error(primaryErr))
	metrics.RecordUpstreamFallback(action)

	start = time.Now()
	body, fallbackErr := c.fetchCallback(ctx, rawURL)
	metrics.RecordUpstreamRequest(action, strategyJSONP, outcome(fallbackErr), msSince(start))
	if fallbackErr != nil {
		c.logger.Warn(ctx, "upstream call failed",
			logger.String("action", action), logger.Error(fallbackErr))
		return nil, errors.Join(
			fmt.Errorf("%s: %w: %w", action, ErrFallbackFailed, fallbackErr),
			primaryErr,
		)
	}
	span.SetAttributes(attribute.String("league.strategy", strategyJSONP))
	c.store(ctx, rawURL, body)
	return body, nil
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache != nil {
		c.cache.Set(ctx, key, body)
	}
}

// fetch is the primary strategy: GET returning a JSON body.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := c.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrDecode)
	}
	return body, nil
}

// fetchCallback is the fallback strategy. The request carries a fresh
// callback token and the answer must be token(<json>).
func (c *Client) fetchCallback(ctx context.Context, rawURL string) ([]byte, error) {
	token, result, release := c.registry.Acquire()
	defer release()

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("callback", token)
	u.RawQuery = q.Encode()

	raw, err := c.do(ctx, u.String())
	if err != nil {
		c.registry.Reject(token, err)
	} else if name, payload, perr := unwrapCallback(raw); perr != nil {
		c.registry.Reject(token, perr)
	} else if name != token {
		// Only this request's token may be settled from this answer.
		c.registry.Reject(token, fmt.Errorf("%w: %q", ErrUnknownCallback, name))
	} else {
		c.registry.Resolve(token, payload)
	}

	select {
	case d := <-result:
		return d.body, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// do performs one rate-limited GET bounded by the client timeout.
func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	if c.limiter != nil {
		if c.limiter.Tokens() < 1 {
			metrics.RecordUpstreamThrottled()
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/javascript")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrStatus, resp.StatusCode)
	}
	return body, nil
}

var callbackBody = regexp.MustCompile(`^\s*(?:/\*\*/\s*)?([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([\s\S]*)\)\s*;?\s*$`)

// unwrapCallback splits name(<json>); into the callback name and payload.
func unwrapCallback(raw []byte) (string, json.RawMessage, error) {
	m := callbackBody.FindSubmatch(raw)
	if m == nil {
		return "", nil, fmt.Errorf("%w: not a callback response", ErrDecode)
	}
	payload := bytes.TrimSpace(m[2])
	if !json.Valid(payload) {
		return "", nil, fmt.Errorf("%w: callback payload is not JSON", ErrDecode)
	}
	return string(m[1]), json.RawMessage(payload), nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
