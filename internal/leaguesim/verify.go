package leaguesim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	service "github.com/okian/pokerleague/internal/app"
	"github.com/okian/pokerleague/internal/domain/types"
	"github.com/okian/pokerleague/pkg/logger"
)

// ErrUnhealthy is returned when the service health check fails.
var ErrUnhealthy = errors.New("service unhealthy")

const (
	defaultPlayerSample = 5
	maxErrorBody        = 512
)

// Report summarizes a smoke check of a running league service.
type Report struct {
	Seasons        int
	RankingRows    int
	GeneralRows    int
	PlayersChecked int
	Problems       []string
	Duration       time.Duration
}

// OK reports whether no problem was found.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Verifier checks the views of a running service for consistency.
type Verifier struct {
	baseURL string
	http    *http.Client
	sample  int
	logger  logger.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithHTTPClient sets the client used to call the service.
func WithHTTPClient(hc *http.Client) VerifierOption {
	return func(v *Verifier) {
		if hc != nil {
			v.http = hc
		}
	}
}

// WithPlayerSample sets how many top players get their profile checked.
func WithPlayerSample(n int) VerifierOption {
	return func(v *Verifier) {
		if n >= 0 {
			v.sample = n
		}
	}
}

// NewVerifier creates a Verifier for the service at baseURL.
func NewVerifier(baseURL string, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		sample:  defaultPlayerSample,
		logger:  logger.Get().Named("verify"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run checks health, the season catalogue, the all-time ranking of the
// ranking and general views, and a sample of player profiles. Transport
// failures abort the run; inconsistencies are collected as problems.
func (v *Verifier) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	if err := v.health(ctx); err != nil {
		return report, err
	}

	var seasons service.SeasonsView
	if err := v.getJSON(ctx, "/api/seasons", &seasons); err != nil {
		return report, err
	}
	for _, labels := range seasons.Catalog.SeasonsByYear {
		report.Seasons += len(labels)
	}

	var ranked service.RankingView
	if err := v.getJSON(ctx, "/api/ranking?ano=ALL&temporada=ALL", &ranked); err != nil {
		return report, err
	}
	report.RankingRows = len(ranked.Rows)
	report.Problems = append(report.Problems, CheckRanks("ranking", ranked.Rows)...)

	var general service.GeneralView
	if err := v.getJSON(ctx, "/api/geral", &general); err != nil {
		return report, err
	}
	report.GeneralRows = len(general.Rows)
	report.Problems = append(report.Problems, CheckRanks("geral", general.Rows)...)

	problems, checked, err := v.checkPlayers(ctx, general.Rows)
	if err != nil {
		return report, err
	}
	report.PlayersChecked = checked
	report.Problems = append(report.Problems, problems...)
	report.Duration = time.Since(start)

	v.logger.Info(ctx, "verification finished",
		logger.Int("seasons", report.Seasons),
		logger.Int("rankingRows", report.RankingRows),
		logger.Int("generalRows", report.GeneralRows),
		logger.Int("playersChecked", report.PlayersChecked),
		logger.Int("problems", len(report.Problems)),
		logger.Duration("duration", report.Duration))
	return report, nil
}

// checkPlayers fetches the profiles of the top rows concurrently and
// compares them with the table.
func (v *Verifier) checkPlayers(ctx context.Context, rows []types.RankedRow) ([]string, int, error) {
	n := min(v.sample, len(rows))
	var (
		mu       sync.Mutex
		problems []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, row := range rows[:n] {
		g.Go(func() error {
			var p service.PlayerView
			if err := v.getJSON(gctx, "/api/jogador/"+url.PathEscape(row.PlayerID), &p); err != nil {
				return err
			}
			var found []string
			if p.PlayerID != row.PlayerID {
				found = append(found, fmt.Sprintf("jogador %s: profile id is %q", row.PlayerID, p.PlayerID))
			}
			if p.KPIs.Participations != row.Participations.Int() {
				found = append(found, fmt.Sprintf("jogador %s: %d participations in profile, %d in table",
					row.PlayerID, p.KPIs.Participations, row.Participations.Int()))
			}
			if !p.Position.OK() {
				found = append(found, fmt.Sprintf("jogador %s: position failed: %s", row.PlayerID, p.Position.Error.Message))
			}
			mu.Lock()
			problems = append(problems, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return problems, n, nil
}

// CheckRanks validates display ranks: the first row is 1, ranks never
// decrease, points never increase, and a rank either repeats the previous
// one (a tie) or equals the row's 1-based index.
func CheckRanks(view string, rows []types.RankedRow) []string {
	var out []string
	for i, r := range rows {
		switch {
		case i == 0 && r.Rank != 1:
			out = append(out, fmt.Sprintf("%s: first rank is %d", view, r.Rank))
		case i == 0:
		case r.Points > rows[i-1].Points:
			out = append(out, fmt.Sprintf("%s: row %d has more points than row %d", view, i+1, i))
		case r.Rank != rows[i-1].Rank && r.Rank != i+1:
			out = append(out, fmt.Sprintf("%s: row %d has rank %d", view, i+1, r.Rank))
		case r.Rank == rows[i-1].Rank && r.Points != rows[i-1].Points:
			out = append(out, fmt.Sprintf("%s: rows %d and %d share rank %d with different points", view, i, i+1, r.Rank))
		}
	}
	return out
}

func (v *Verifier) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func (v *Verifier) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+path, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}
