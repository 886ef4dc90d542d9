package leaguesim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/okian/pokerleague/internal/adapters/upstream"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/pkg/logger"
)

var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

// Provider serves a League over the league data API: GET ?action=... with
// an optional callback parameter for JSONP.
type Provider struct {
	league       *League
	latency      time.Duration
	plainFailure bool
	logger       logger.Logger

	plain    atomic.Int64
	callback atomic.Int64
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLatency delays every response by d.
func WithLatency(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.latency = d
	}
}

// WithPlainFailure makes plain JSON requests fail with 503 so clients must
// fall back to JSONP.
func WithPlainFailure() ProviderOption {
	return func(p *Provider) {
		p.plainFailure = true
	}
}

// WithLogger sets the provider logger.
func WithLogger(l logger.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProvider creates a Provider for l.
func NewProvider(l *League, opts ...ProviderOption) *Provider {
	p := &Provider{league: l}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("leaguesim")
	}
	return p
}

// Counts reports how many plain and JSONP requests were answered.
func (p *Provider) Counts() (plain, callback int64) {
	return p.plain.Load(), p.callback.Load()
}

// ServeHTTP implements http.Handler.
func (p *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.latency > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(p.latency):
		}
	}

	q := r.URL.Query()
	cb := q.Get("callback")
	if cb != "" && !callbackPattern.MatchString(cb) {
		http.Error(w, "invalid callback", http.StatusBadRequest)
		return
	}
	if cb == "" && p.plainFailure {
		http.Error(w, "plain requests disabled", http.StatusServiceUnavailable)
		return
	}

	action := q.Get("action")
	payload, err := p.answer(action, q.Get("ano"), q.Get("temporada"), q.Get("id_jogador"))
	if err != nil {
		p.logger.Debug(r.Context(), "unknown action", logger.String("action", action))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	p.logRequest(r.Context(), action, cb != "")
	if cb != "" {
		p.callback.Add(1)
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = fmt.Fprintf(w, "/**/%s(%s);", cb, body)
		return
	}
	p.plain.Add(1)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}

type envelope struct {
	Data any `json:"data"`
}

func (p *Provider) answer(action, year, label, id string) (any, error) {
	switch action {
	case upstream.ActionSeasons:
		return envelope{Data: p.league.Refs()}, nil
	case upstream.ActionRounds:
		return envelope{Data: p.league.Rounds()}, nil
	case upstream.ActionRanking:
		return envelope{Data: p.league.Ranking(season.Selection{Year: year, Season: label})}, nil
	case upstream.ActionGeneralRanking:
		return envelope{Data: p.league.General()}, nil
	case upstream.ActionPlayer:
		resp, _ := p.league.Player(year, label, id)
		return resp, nil
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

func (p *Provider) logRequest(ctx context.Context, action string, jsonp bool) {
	p.logger.Debug(ctx, "league request",
		logger.String("action", action),
		logger.Bool("jsonp", jsonp))
}
