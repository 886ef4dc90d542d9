// Package model contains domain models passed between layers.
//
// JSON tags follow the league data provider's field names.
package model

import "encoding/json"

// SeasonRef identifies one (year, season label) pair, e.g. ("2025", "T1").
type SeasonRef struct {
	Year   string `json:"ano"`
	Season string `json:"temporada"`
}

// UnmarshalJSON accepts numeric years and season labels.
func (s *SeasonRef) UnmarshalJSON(b []byte) error {
	var aux struct {
		Year   Text `json:"ano"`
		Season Text `json:"temporada"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.Year, s.Season = string(aux.Year), string(aux.Season)
	return nil
}

// RankingRow is one player's line in a season (or all-time) ranking.
type RankingRow struct {
	PlayerID        string `json:"id_jogador"`
	Name            string `json:"nome"`
	Points          Count  `json:"pontos"`
	P1              Count  `json:"p1"`
	P2              Count  `json:"p2"`
	P3              Count  `json:"p3"`
	P4              Count  `json:"p4"`
	P5              Count  `json:"p5"`
	P6              Count  `json:"p6"`
	P7              Count  `json:"p7"`
	P8              Count  `json:"p8"`
	P9              Count  `json:"p9"`
	SerieB          Count  `json:"serie_b"`
	OutOfFinalTable Count  `json:"fora_mesa_final"`
	Podiums         Count  `json:"podios"`
	BestHand        Count  `json:"melhor_mao"`
	RebuyTotal      Count  `json:"rebuy_total"`
	AddonTotal      Count  `json:"addon_total"`
	Participations  Count  `json:"participacoes"`
	Eliminated      Flag   `json:"eliminado,omitempty"`
}

// Counters returns pointers to every summed counter in comparison order:
// points, p1..p9, serie_b, fora_mesa_final, podios, melhor_mao,
// rebuy_total, addon_total, participacoes.
func (r *RankingRow) Counters() []*Count {
	return []*Count{
		&r.Points,
		&r.P1, &r.P2, &r.P3, &r.P4, &r.P5, &r.P6, &r.P7, &r.P8, &r.P9,
		&r.SerieB, &r.OutOfFinalTable,
		&r.Podiums, &r.BestHand,
		&r.RebuyTotal, &r.AddonTotal,
		&r.Participations,
	}
}

// Placements returns the nine placement buckets, p1 first.
func (r RankingRow) Placements() [9]Count {
	return [9]Count{r.P1, r.P2, r.P3, r.P4, r.P5, r.P6, r.P7, r.P8, r.P9}
}

// Round is a single game session (rodada) within a season.
type Round struct {
	RoundID   string `json:"id_rodada"`
	Year      string `json:"ano"`
	Season    string `json:"temporada"`
	Round     string `json:"rodada"`
	Date      string `json:"data"`
	Players   Count  `json:"qtd_jogadores"`
	PrizePool Amount `json:"prizepool"`
}

// UnmarshalJSON accepts numeric labels for ids, years, seasons and rounds.
func (r *Round) UnmarshalJSON(b []byte) error {
	type plain Round
	aux := struct {
		*plain
		RoundID Text `json:"id_rodada"`
		Year    Text `json:"ano"`
		Season  Text `json:"temporada"`
		Round   Text `json:"rodada"`
		Date    Text `json:"data"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.RoundID, r.Year, r.Season = string(aux.RoundID), string(aux.Year), string(aux.Season)
	r.Round, r.Date = string(aux.Round), string(aux.Date)
	return nil
}
