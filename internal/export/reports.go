package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/pokerleague/internal/domain/stats"
	"github.com/okian/pokerleague/internal/domain/types"
)

// WriteSeasonRanking writes a workbook with the Ranking sheet and, when
// kpis is not nil, a Resumo sheet titled with title.
func WriteSeasonRanking(out io.Writer, title string, rows []types.RankedRow, kpis *types.RoundKPIs) (int64, error) {
	return write(out, func(wb *Workbook) error {
		if err := wb.AddRanking("Ranking", rows); err != nil {
			return err
		}
		if kpis == nil {
			return nil
		}
		return wb.AddSummary("Resumo", KPISummary(title, *kpis))
	})
}

// WriteGeneral writes the all-time workbook: Geral, Pódio and Destaques.
func WriteGeneral(out io.Writer, rows, podium []types.RankedRow, minParticipations int, sups []stats.Superlative) (int64, error) {
	return write(out, func(wb *Workbook) error {
		if err := wb.AddRanking("Geral", rows); err != nil {
			return err
		}
		if err := wb.AddRanking("Pódio", podium); err != nil {
			return err
		}
		return wb.AddSummary("Destaques", SuperlativeSummary(minParticipations, sups))
	})
}

// SuperlativeSummary renders superlatives for a summary sheet. Winners are
// listed by name with the winning value; a superlative nobody reached
// shows "-".
func SuperlativeSummary(minParticipations int, sups []stats.Superlative) []SummaryItem {
	items := []SummaryItem{{Label: "Mínimo de participações", Value: minParticipations}}
	for _, s := range sups {
		items = append(items, SummaryItem{Label: s.Label, Value: describeWinners(s)})
	}
	return items
}

func describeWinners(s stats.Superlative) string {
	if len(s.Winners) == 0 {
		return "-"
	}
	names := make([]string, len(s.Winners))
	for i, w := range s.Winners {
		names[i] = w.Name
		if names[i] == "" {
			names[i] = w.PlayerID
		}
	}
	return fmt.Sprintf("%s (%s)", strings.Join(names, ", "), strconv.FormatFloat(s.Value, 'f', -1, 64))
}

func write(out io.Writer, fill func(*Workbook) error) (int64, error) {
	wb, err := NewWorkbook()
	if err != nil {
		return 0, err
	}
	defer func() { _ = wb.Close() }()

	if err := fill(wb); err != nil {
		return 0, err
	}
	return wb.WriteTo(out)
}
