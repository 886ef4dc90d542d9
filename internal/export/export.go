// Package export writes league rankings as XLSX workbooks.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/pokerleague/internal/domain/types"
)

// ErrEmptyWorkbook is returned when writing a workbook without sheets.
var ErrEmptyWorkbook = errors.New("workbook has no sheets")

// RankingHeader is the column header of a ranking sheet.
var RankingHeader = []string{
	"Pos", "Jogador", "Pontos",
	"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9",
	"CSB", "P10+", "Pódios", "Melhor Mão", "Rebuy", "Add-on", "Part.",
}

// SummaryItem is one label/value line of a summary sheet.
type SummaryItem struct {
	Label string
	Value any
}

// Workbook builds an XLSX file sheet by sheet.
type Workbook struct {
	f      *excelize.File
	sheets int
	header int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &Workbook{f: f, header: header}, nil
}

// addSheet reuses the default sheet for the first call.
func (w *Workbook) addSheet(name string) error {
	w.sheets++
	if w.sheets == 1 {
		return w.f.SetSheetName(w.f.GetSheetName(0), name)
	}
	_, err := w.f.NewSheet(name)
	return err
}

// AddRanking writes a ranking sheet: one header row and one row per player.
// Eliminated players are suffixed with "(eliminado)".
func (w *Workbook) AddRanking(sheet string, rows []types.RankedRow) error {
	if err := w.addSheet(sheet); err != nil {
		return fmt.Errorf("add sheet %q: %w", sheet, err)
	}
	if err := w.writeHeader(sheet, RankingHeader); err != nil {
		return err
	}

	for i, r := range rows {
		name := r.Name
		if name == "" {
			name = r.PlayerID
		}
		if r.Eliminated {
			name += " (eliminado)"
		}
		line := []any{r.Rank, name, r.Points.Int()}
		for _, p := range r.Placements() {
			line = append(line, p.Int())
		}
		line = append(line,
			r.SerieB.Int(), r.OutOfFinalTable.Int(), r.Podiums.Int(), r.BestHand.Int(),
			r.RebuyTotal.Int(), r.AddonTotal.Int(), r.Participations.Int(),
		)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(sheet, cell, &line); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := w.f.SetColWidth(sheet, "B", "B", 28); err != nil {
		return err
	}
	return w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// AddSummary writes a two-column label/value sheet.
func (w *Workbook) AddSummary(sheet string, items []SummaryItem) error {
	if err := w.addSheet(sheet); err != nil {
		return fmt.Errorf("add sheet %q: %w", sheet, err)
	}
	if err := w.writeHeader(sheet, []string{"Indicador", "Valor"}); err != nil {
		return err
	}
	for i, it := range items {
		line := []any{it.Label, it.Value}
		if err := w.f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &line); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return w.f.SetColWidth(sheet, "A", "B", 32)
}

func (w *Workbook) writeHeader(sheet string, header []string) error {
	if err := w.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, "A1", last, w.header)
}

// WriteTo serialises the workbook.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	if w.sheets == 0 {
		return 0, ErrEmptyWorkbook
	}
	w.f.SetActiveSheet(0)
	return w.f.WriteTo(out)
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// KPISummary renders round KPIs for a summary sheet.
func KPISummary(title string, k types.RoundKPIs) []SummaryItem {
	return []SummaryItem{
		{Label: "Seleção", Value: title},
		{Label: "Jogadores (no ranking)", Value: k.Players},
		{Label: "Rodadas", Value: k.Rounds},
		{Label: "Distribuído em premiações", Value: float64(k.PrizePool)},
	}
}
