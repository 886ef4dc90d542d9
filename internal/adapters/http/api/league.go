package api

import (
	"net/http"

	"github.com/okian/pokerleague/pkg/logger"
)

// LeagueHandler serves the season and all-time views.
type LeagueHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewLeagueHandler creates a new league handler.
func NewLeagueHandler(deps Dependencies, log logger.Logger) *LeagueHandler {
	return &LeagueHandler{deps: deps, logger: log}
}

// HandleSeasons handles GET /api/seasons.
func (h *LeagueHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	const op = "api.seasons"
	view, err := h.deps.Seasons(r.Context())
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// HandleHome handles GET /api/home?ano=&temporada=. Sections that fail to
// load carry their own error and the response is still 200.
func (h *LeagueHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	const op = "api.home"
	sel, err := selectionFrom(r)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	view, err := h.deps.Home(r.Context(), sel)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// HandleRounds handles GET /api/rounds?ano=&temporada=.
func (h *LeagueHandler) HandleRounds(w http.ResponseWriter, r *http.Request) {
	const op = "api.rounds"
	sel, err := selectionFrom(r)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	rounds, err := h.deps.Rounds(r.Context(), sel)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rounds)
}

// HandleRanking handles GET /api/ranking?ano=&temporada=.
func (h *LeagueHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.ranking"
	sel, err := selectionFrom(r)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	view, err := h.deps.Ranking(r.Context(), sel)
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// HandleGeneral handles GET /api/geral.
func (h *LeagueHandler) HandleGeneral(w http.ResponseWriter, r *http.Request) {
	const op = "api.general"
	view, err := h.deps.General(r.Context())
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}
