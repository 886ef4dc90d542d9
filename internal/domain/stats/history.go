package stats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/season"
)

// SeasonPoint is one season on a player's history chart.
type SeasonPoint struct {
	Key        string  `json:"key"`
	Year       string  `json:"ano"`
	Season     string  `json:"temporada"`
	Points     int     `json:"pontos"`
	Efficiency float64 `json:"eficiencia"`
	// Position is the final ranking position, 0 when unknown.
	Position int `json:"posicao"`
}

// seasonKeys returns the distinct "year-season" keys of the summaries, newest
// first. Summaries without a year or season are skipped.
func seasonKeys(summaries []model.SeasonSummary) []string {
	keys := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if s.Year == "" || s.Season == "" {
			continue
		}
		if k := season.Key(s.Year, s.Season); !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return season.SortKeysDesc(keys)
}

// SeasonPoints returns the last limit seasons in ascending order with their
// approximate efficiency and final position.
func SeasonPoints(summaries []model.SeasonSummary, limit int) []SeasonPoint {
	keys := seasonKeys(summaries)
	keys = keys[:max(0, min(limit, len(keys)))]
	slices.Reverse(keys)

	byKey := make(map[string]model.SeasonSummary, len(summaries))
	for _, s := range summaries {
		byKey[season.Key(s.Year, s.Season)] = s
	}

	out := make([]SeasonPoint, 0, len(keys))
	for _, k := range keys {
		s := byKey[k]
		out = append(out, SeasonPoint{
			Key:        k,
			Year:       s.Year,
			Season:     s.Season,
			Points:     s.Points.Int(),
			Efficiency: EfficiencyApprox(s.Points.Float(), s.Participations.Float()),
			Position:   s.Position.Int(),
		})
	}
	return out
}

// RecentSeasons returns the n newest seasons of the summaries, newest first,
// with normalised season labels ready for a single-season lookup.
func RecentSeasons(summaries []model.SeasonSummary, n int) []model.SeasonRef {
	keys := seasonKeys(summaries)
	keys = keys[:max(0, min(n, len(keys)))]

	out := make([]model.SeasonRef, len(keys))
	for i, k := range keys {
		y, s := season.SplitKey(k)
		out[i] = model.SeasonRef{Year: y, Season: season.Normalize(s)}
	}
	return out
}

// RoundPoint is one round on a player's round-by-round chart.
type RoundPoint struct {
	RoundID  string `json:"id_rodada"`
	Label    string `json:"rodada"`
	Points   int    `json:"pontos"`
	Position int    `json:"posicao"`
}

// RoundSeries orders a season history by round id and returns the running
// points and ranking position per round. When the history carries no
// cumulative points the per-round points are used.
func RoundSeries(history []model.RoundRecord) []RoundPoint {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b model.RoundRecord) int {
		return cmp.Compare(a.RoundID, b.RoundID)
	})

	cumulative := slices.ContainsFunc(sorted, func(r model.RoundRecord) bool { return r.CumulativePoints > 0 })

	out := make([]RoundPoint, len(sorted))
	for i, r := range sorted {
		pts := r.Points
		if cumulative {
			pts = r.CumulativePoints
		}
		out[i] = RoundPoint{
			RoundID:  r.RoundID,
			Label:    roundLabel(r),
			Points:   pts.Int(),
			Position: r.RankingPosition.Int(),
		}
	}
	return out
}

// roundLabel keeps the part after the last dash ("2025-T1-03" -> "03") and
// pads it to two digits.
func roundLabel(r model.RoundRecord) string {
	full := r.Round
	if full == "" {
		full = r.RoundID
	}
	if i := strings.LastIndex(full, "-"); i >= 0 {
		full = full[i+1:]
	}
	if len(full) < 2 {
		full = strings.Repeat("0", 2-len(full)) + full
	}
	return full
}

// LastPosition returns the ranking position after the latest round of a
// season history, 0 when unknown.
func LastPosition(history []model.RoundRecord) int {
	series := RoundSeries(history)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1].Position
}

// SeasonEfficiencyExact is points over (participations + rebuys) for one
// season history. A round counts as played when it is flagged as such or
// has a placement or points.
func SeasonEfficiencyExact(history []model.RoundRecord) float64 {
	var points, played, rebuys float64
	for _, r := range history {
		if !participated(r) {
			continue
		}
		points += r.Points.Float()
		rebuys += r.Rebuy.Float()
		played++
	}
	return EfficiencyExact(points, played, rebuys)
}

func participated(r model.RoundRecord) bool {
	return bool(r.Participated) || r.Placement > 0 || r.Points > 0
}

// PlayingSince returns the earliest played round date of the histories.
// Dates are ISO yyyy-mm-dd so string order is chronological.
func PlayingSince(histories ...[]model.RoundRecord) string {
	first := ""
	for _, h := range histories {
		for _, r := range h {
			if r.Date == "" || !participated(r) {
				continue
			}
			if first == "" || r.Date < first {
				first = r.Date
			}
		}
	}
	return first
}
