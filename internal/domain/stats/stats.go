// Package stats computes derived league metrics: rates, efficiency, best
// campaign, superlatives, podium and round KPIs.
package stats

import (
	"math"

	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/internal/domain/types"
)

// DefaultMinParticipations is the eligibility threshold for general stats.
const DefaultMinParticipations = 5

// SafeDiv returns a/b, or 0 when b is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// WinRate is wins (p1) over participations.
func WinRate(r model.RankingRow) float64 {
	return SafeDiv(r.P1.Float(), r.Participations.Float())
}

// PodiumRate is podiums over participations.
func PodiumRate(r model.RankingRow) float64 {
	return SafeDiv(r.Podiums.Float(), r.Participations.Float())
}

// EfficiencyApprox is points over participations. It is used where rebuy
// counts are not available, such as the all-time season summaries.
func EfficiencyApprox(points, participations float64) float64 {
	return SafeDiv(points, participations)
}

// EfficiencyExact is points over (participations + rebuys). Add-ons are not
// counted.
func EfficiencyExact(points, participations, rebuys float64) float64 {
	return SafeDiv(points, participations+rebuys)
}

// Campaign is a player's best season by approximate efficiency.
type Campaign struct {
	Year       string  `json:"ano"`
	Season     string  `json:"temporada"`
	Efficiency float64 `json:"eficiencia"`
}

// BestCampaign returns the season with the highest approximate efficiency.
// Summaries missing a year or season are skipped; on equal efficiency the
// first one wins.
func BestCampaign(summaries []model.SeasonSummary) (Campaign, bool) {
	var (
		best  Campaign
		found bool
	)
	for _, s := range summaries {
		if s.Year == "" || s.Season == "" {
			continue
		}
		eff := EfficiencyApprox(s.Points.Float(), s.Participations.Float())
		if !found || eff > best.Efficiency {
			best = Campaign{Year: s.Year, Season: s.Season, Efficiency: eff}
			found = true
		}
	}
	return best, found
}

// Eligible keeps rows with at least minParticipations participations.
func Eligible(rows []model.RankingRow, minParticipations int) []model.RankingRow {
	out := make([]model.RankingRow, 0, len(rows))
	for _, r := range rows {
		if r.Participations.Int() >= minParticipations {
			out = append(out, r)
		}
	}
	return out
}

// Podium returns the first n rows with their podium position (1-based).
func Podium(rows []model.RankingRow, n int) []types.RankedRow {
	n = max(0, min(n, len(rows)))
	out := make([]types.RankedRow, n)
	for i := range n {
		out[i] = types.RankedRow{Rank: i + 1, RankingRow: rows[i]}
	}
	return out
}

// FilterRounds keeps the rounds of a year and season; either may be ALL.
func FilterRounds(rounds []model.Round, year, seasonLabel string) []model.Round {
	sel := season.Selection{Year: year, Season: seasonLabel}.Normalized()
	out := make([]model.Round, 0, len(rounds))
	for _, r := range rounds {
		if sel.Matches(r.Year, r.Season) {
			out = append(out, r)
		}
	}
	return out
}

// RoundKPIs summarises filtered rounds. players is the size of the ranking
// shown next to them.
func RoundKPIs(rounds []model.Round, players int) types.RoundKPIs {
	k := types.RoundKPIs{Rounds: len(rounds), Players: players}
	for _, r := range rounds {
		k.PrizePool += r.PrizePool
	}
	return k
}

// round6 rounds to 6 decimal places so float noise never splits a tie.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
