package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/pokerleague/internal/domain/types"
	"github.com/okian/pokerleague/internal/export"
	"github.com/okian/pokerleague/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves rankings as XLSX downloads.
type ExportHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, log logger.Logger) *ExportHandler {
	return &ExportHandler{deps: deps, logger: log}
}

// HandleRankingXLSX handles GET /api/ranking.xlsx?ano=&temporada=. The
// workbook holds the ranking sheet and, when rounds loaded, a summary sheet.
func (h *ExportHandler) HandleRankingXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "api.ranking_xlsx"
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
	if se := view.Ranking.Error; se != nil {
		writeError(w, r, statusFor(se.Code), se.Code, errors.New(se.Message))
		return
	}

	var kpis *types.RoundKPIs
	if view.KPIs.OK() {
		kpis = &view.KPIs.Data
	}
	resolved := view.Ranking.Data.Selection
	filename := fmt.Sprintf("ranking-%s-%s.xlsx", fileLabel(resolved.Year), fileLabel(resolved.Season))
	h.send(w, r, op, filename, func(out io.Writer) (int64, error) {
		return export.WriteSeasonRanking(out, resolved.Year+" / "+resolved.Season, view.Ranking.Data.Rows, kpis)
	})
}

// HandleGeneralXLSX handles GET /api/geral.xlsx.
func (h *ExportHandler) HandleGeneralXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "api.general_xlsx"
	view, err := h.deps.General(r.Context())
	if err != nil {
		fail(w, r, h.logger, op, err)
		return
	}
	h.send(w, r, op, "ranking-geral.xlsx", func(out io.Writer) (int64, error) {
		return export.WriteGeneral(out, view.Rows, view.Podium, view.MinParticipations, view.Superlatives)
	})
}

// send renders the workbook into memory first so a render failure can
// still produce an error response.
func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, op, filename string, render func(io.Writer) (int64, error)) {
	var buf bytes.Buffer
	if _, err := render(&buf); err != nil {
		h.logger.Error(r.Context(), "workbook render failed", logger.String("op", op), logger.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: %w", ErrRender, err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func fileLabel(v string) string {
	if v == "" {
		return "all"
	}
	return strings.ToLower(v)
}
