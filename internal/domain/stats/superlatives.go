package stats

import (
	"math"

	"github.com/okian/pokerleague/internal/domain/model"
)

// Metric is a named numeric measure of a ranking row.
type Metric struct {
	Key   string
	Label string
	Value func(model.RankingRow) float64
}

// Superlative is the best value of a metric and every row reaching it.
type Superlative struct {
	Key     string             `json:"key"`
	Label   string             `json:"label"`
	Value   float64            `json:"value"`
	Winners []model.RankingRow `json:"winners"`
}

// Best finds the maximum of m over rows and returns all rows achieving it,
// in input order. Values are compared after rounding to 6 decimals. With no
// rows the value is 0 and there are no winners.
func Best(rows []model.RankingRow, m Metric) Superlative {
	out := Superlative{Key: m.Key, Label: m.Label, Winners: []model.RankingRow{}}
	top := math.Inf(-1)
	for _, r := range rows {
		v := round6(m.Value(r))
		switch {
		case v > top:
			top = v
			out.Winners = append(out.Winners[:0], r)
		case v == top:
			out.Winners = append(out.Winners, r)
		}
	}
	if len(out.Winners) > 0 {
		out.Value = top
	}
	return out
}

// StandardSuperlatives is the catalogue shown on the all-time view.
func StandardSuperlatives() []Metric {
	return []Metric{
		{Key: "most_rebuys", Label: "Mais rebuy/add-on", Value: func(r model.RankingRow) float64 {
			return r.RebuyTotal.Float() + r.AddonTotal.Float()
		}},
		{Key: "most_participations", Label: "Mais participações", Value: func(r model.RankingRow) float64 {
			return r.Participations.Float()
		}},
		{Key: "most_podiums", Label: "Mais pódios", Value: func(r model.RankingRow) float64 {
			return r.Podiums.Float()
		}},
		{Key: "most_titles", Label: "Mais títulos", Value: func(r model.RankingRow) float64 {
			return r.P1.Float()
		}},
		{Key: "most_best_hands", Label: "Mais melhores mãos", Value: func(r model.RankingRow) float64 {
			return r.BestHand.Float()
		}},
		{Key: "best_win_rate", Label: "Melhor taxa de vitória", Value: WinRate},
		{Key: "best_podium_rate", Label: "Melhor taxa de pódio", Value: PodiumRate},
		{Key: "best_efficiency", Label: "Melhor aproveitamento", Value: func(r model.RankingRow) float64 {
			return EfficiencyApprox(r.Points.Float(), r.Participations.Float())
		}},
	}
}

// Superlatives evaluates every metric over rows.
func Superlatives(rows []model.RankingRow, metrics []Metric) []Superlative {
	out := make([]Superlative, len(metrics))
	for i, m := range metrics {
		out[i] = Best(rows, m)
	}
	return out
}
