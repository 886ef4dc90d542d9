package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/pokerleague/internal/adapters/chart"
	"github.com/okian/pokerleague/pkg/logger"
)

// PlayerHandler serves player profiles and their charts.
type PlayerHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps Dependencies, log logger.Logger) *PlayerHandler {
	return &PlayerHandler{deps: deps, logger: log}
}

// HandlePlayer handles GET /api/jogador/{id}.
func (h *PlayerHandler) HandlePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.player"
	view, err := h.deps.Player(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// HandlePlayerSeason handles GET /api/jogador/{id}/temporada?ano=&temporada=.
func (h *PlayerHandler) HandlePlayerSeason(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_season"
	sel, err := selectionFrom(r)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	view, err := h.deps.PlayerSeason(r.Context(), chi.URLParam(r, "id"), sel.Year, sel.Season)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// HandleChart handles GET /api/jogador/{id}/chart.svg. Without a season
// selection it draws the per-season history; with ano and temporada it
// draws the rounds of that season.
func (h *PlayerHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_chart"
	sel, err := selectionFrom(r)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	id := chi.URLParam(r, "id")

	var svg []byte
	if sel.Year == "" && sel.Season == "" {
		view, err := h.deps.Player(r.Context(), id)
		if err != nil {
			fail(w, r, h.logger, op, err)
			return
		}
		svg, err = chart.SeasonHistory(view.Chart)
		if err != nil {
			h.renderFailed(w, r, op, err)
			return
		}
	} else {
		view, err := h.deps.PlayerSeason(r.Context(), id, sel.Year, sel.Season)
		if err != nil {
			fail(w, r, h.logger, op, err)
			return
		}
		svg, err = chart.RoundHistory(view.Series)
		if err != nil {
			h.renderFailed(w, r, op, err)
			return
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (h *PlayerHandler) renderFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(r.Context(), "chart render failed", logger.String("op", op), logger.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: %w", ErrRender, err))
}
