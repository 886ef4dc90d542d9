// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	service "github.com/okian/pokerleague/internal/app"
	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/pkg/logger"
)

// Dependencies required by HTTP handlers. The league service satisfies it.
type Dependencies interface {
	Seasons(ctx context.Context) (service.SeasonsView, error)
	Rounds(ctx context.Context, sel season.Selection) ([]model.Round, error)
	Ranking(ctx context.Context, sel season.Selection) (service.RankingView, error)
	Home(ctx context.Context, sel season.Selection) (service.HomeView, error)
	General(ctx context.Context) (service.GeneralView, error)
	Player(ctx context.Context, id string) (service.PlayerView, error)
	PlayerSeason(ctx context.Context, id, year, seasonLabel string) (service.PlayerSeasonView, error)
}

// Server wires HTTP routes for the league API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	leagueHandler *LeagueHandler
	playerHandler *PlayerHandler
	exportHandler *ExportHandler
	corsOrigins   []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCORSOrigins sets the browser origins allowed to call /api. An empty
// list keeps the default of allowing any origin.
func WithCORSOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	log := logger.Get().Named("api")
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		leagueHandler: NewLeagueHandler(deps, log),
		playerHandler: NewPlayerHandler(deps, log),
		exportHandler: NewExportHandler(deps, log),
		corsOrigins:   []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.With(MetricsMiddleware).Get("/healthz", s.healthHandler.HandleHealth)
	r.With(MetricsMiddleware).Get("/stats", s.statsHandler.HandleStats)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		}).Handler)
		r.Use(MetricsMiddleware)
		r.Use(CallbackGuard)

		r.Get("/seasons", s.leagueHandler.HandleSeasons)
		r.Get("/home", s.leagueHandler.HandleHome)
		r.Get("/rounds", s.leagueHandler.HandleRounds)
		r.Get("/ranking", s.leagueHandler.HandleRanking)
		r.Get("/ranking.xlsx", s.exportHandler.HandleRankingXLSX)
		r.Get("/geral", s.leagueHandler.HandleGeneral)
		r.Get("/geral.xlsx", s.exportHandler.HandleGeneralXLSX)

		r.Get("/jogador/{id}", s.playerHandler.HandlePlayer)
		r.Get("/jogador/{id}/temporada", s.playerHandler.HandlePlayerSeason)
		r.Get("/jogador/{id}/chart.svg", s.playerHandler.HandleChart)
	})
}

type errorResponse struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// callbackPattern accepts plain or dotted JavaScript identifiers.
var callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(?:\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

const maxCallbackLen = 128

func validCallback(cb string) bool {
	return len(cb) <= maxCallbackLen && callbackPattern.MatchString(cb)
}

// CallbackGuard rejects requests whose JSONP callback is not a safe
// identifier.
func CallbackGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cb := r.URL.Query().Get("callback"); cb != "" && !validCallback(cb) {
			writeError(w, r, http.StatusBadRequest, service.CodeBadRequest, fmt.Errorf("%w: invalid callback", ErrBadRequest))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v. With a callback parameter the body is wrapped as a
// JSONP script and always sent with 200 so script loaders see the payload.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "encode response"})
	}
	if cb := r.URL.Query().Get("callback"); cb != "" && validCallback(cb) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "/**/%s(%s);", cb, body)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, r, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps a service error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case service.CodeConfigMissing:
		return http.StatusServiceUnavailable
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeBadRequest:
		return http.StatusBadRequest
	case service.CodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// fail classifies err and writes the matching error response.
func fail(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	code := service.ErrorCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError && code != service.CodeCanceled {
		log.Warn(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("code", code),
			logger.Error(err))
	}
	writeError(w, r, status, code, err)
}

var labelPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{0,32}$`)

// selectionFrom reads the ano and temporada query parameters.
func selectionFrom(r *http.Request) (season.Selection, error) {
	q := r.URL.Query()
	sel := season.Selection{Year: q.Get("ano"), Season: q.Get("temporada")}
	if !labelPattern.MatchString(sel.Year) || !labelPattern.MatchString(sel.Season) {
		return season.Selection{}, fmt.Errorf("%w: ano=%q temporada=%q", service.ErrInvalidSelection, sel.Year, sel.Season)
	}
	return sel, nil
}
