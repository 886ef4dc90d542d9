// Package ranking merges season rankings and assigns display ranks.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/types"
)

// Aggregate merges ranking lists into one ranking keyed by player id.
//
// The first row seen for a player is copied; later rows add every counter
// onto it. Name keeps the latest non-empty value and the eliminated flag
// becomes latest || current. Input slices are not modified. The result is
// ordered with Sort.
func Aggregate(lists ...[]model.RankingRow) []model.RankingRow {
	size := 0
	for _, rows := range lists {
		size += len(rows)
	}

	index := make(map[string]int, size)
	out := make([]model.RankingRow, 0, size)

	for _, rows := range lists {
		for _, row := range rows {
			i, seen := index[row.PlayerID]
			if !seen {
				index[row.PlayerID] = len(out)
				out = append(out, row)
				continue
			}

			acc := &out[i]
			dst, src := acc.Counters(), row.Counters()
			for k := range dst {
				*dst[k] += *src[k]
			}
			if row.Name != "" {
				acc.Name = row.Name
			}
			acc.Eliminated = row.Eliminated || acc.Eliminated
		}
	}

	Sort(out)
	return out
}

// Sort orders rows in place: points descending, then p1..p9, podiums and
// participations descending, then name ascending. Player id breaks any
// remaining tie so the order is total. The sort is stable.
func Sort(rows []model.RankingRow) {
	slices.SortStableFunc(rows, Compare)
}

// Less reports whether a sorts before b.
func Less(a, b model.RankingRow) bool {
	return Compare(a, b) < 0
}

// Compare returns a negative number when a sorts before b, a positive number
// when it sorts after, and zero when both carry the same sort key.
func Compare(a, b model.RankingRow) int {
	ka, kb := sortKey(a), sortKey(b)
	for i := range ka {
		if c := cmp.Compare(kb[i], ka[i]); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.PlayerID, b.PlayerID)
}

func sortKey(r model.RankingRow) [12]model.Count {
	return [12]model.Count{
		r.Points,
		r.P1, r.P2, r.P3, r.P4, r.P5, r.P6, r.P7, r.P8, r.P9,
		r.Podiums,
		r.Participations,
	}
}

// Tied reports whether a and b are equal on every counter: points,
// p1..p9, serie_b, fora_mesa_final, podios, melhor_mao, rebuy_total,
// addon_total and participacoes.
func Tied(a, b model.RankingRow) bool {
	ca, cb := a.Counters(), b.Counters()
	for i := range ca {
		if *ca[i] != *cb[i] {
			return false
		}
	}
	return true
}

// DisplayRanks assigns 1-based display ranks to an already sorted ranking.
// A row tied with the row right above it shares that row's rank; any other
// row gets its own position, so a tie at the top yields 1, 1, 3.
func DisplayRanks(rows []model.RankingRow) []int {
	ranks := make([]int, len(rows))
	for i := range rows {
		if i > 0 && Tied(rows[i], rows[i-1]) {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

// Ranked pairs each row of a sorted ranking with its display rank.
func Ranked(rows []model.RankingRow) []types.RankedRow {
	ranks := DisplayRanks(rows)
	out := make([]types.RankedRow, len(rows))
	for i, row := range rows {
		out[i] = types.RankedRow{Rank: ranks[i], RankingRow: row}
	}
	return out
}

// PositionOf returns the tie-aware display rank of a player in a sorted
// ranking.
func PositionOf(rows []model.RankingRow, playerID string) (int, model.RankingRow, bool) {
	idx := slices.IndexFunc(rows, func(r model.RankingRow) bool { return r.PlayerID == playerID })
	if idx < 0 {
		return 0, model.RankingRow{}, false
	}
	return DisplayRanks(rows)[idx], rows[idx], true
}

// Without returns the rows whose player id is not in ids, keeping order.
func Without(rows []model.RankingRow, ids ...string) []model.RankingRow {
	if len(ids) == 0 {
		return rows
	}
	out := make([]model.RankingRow, 0, len(rows))
	for _, r := range rows {
		if !slices.Contains(ids, r.PlayerID) {
			out = append(out, r)
		}
	}
	return out
}
