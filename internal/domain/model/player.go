package model

import "encoding/json"

// PlayerResponse is the provider's answer to a player lookup. The all-time
// variant (season ALL) fills Seasons and Totals; a single-season lookup
// fills History and Finance.
type PlayerResponse struct {
	OK      Flag            `json:"ok"`
	Player  *PlayerInfo     `json:"jogador,omitempty"`
	Finance *Finance        `json:"financeiro,omitempty"`
	History []RoundRecord   `json:"historico,omitempty"`
	Seasons []SeasonSummary `json:"resumo_por_temporada,omitempty"`
	Totals  *Totals         `json:"total_geral,omitempty"`
	Message string          `json:"message,omitempty"`
}

// PlayerInfo is the player identity plus their summed counters.
type PlayerInfo struct {
	RankingRow
	PlayingSince string `json:"joga_desde,omitempty"`
}

// Finance sums what a player paid and received in a period.
type Finance struct {
	Paid     Amount `json:"pagou"`
	Received Amount `json:"recebeu"`
	Balance  Amount `json:"saldo"`
}

// Totals is the all-time summary of a player.
type Totals struct {
	Points         Count   `json:"pontos"`
	Participations Count   `json:"participacoes"`
	TotalPaid      Amount  `json:"total_pagar"`
	TotalReceived  Amount  `json:"total_receber"`
	Balance        *Amount `json:"saldo,omitempty"`
}

// Net returns the reported balance, or received minus paid when absent.
func (t Totals) Net() Amount {
	if t.Balance != nil {
		return *t.Balance
	}
	return t.TotalReceived - t.TotalPaid
}

// SeasonSummary is one season line of the all-time player summary. It has
// no per-round rebuy detail.
type SeasonSummary struct {
	Year           string `json:"ano"`
	Season         string `json:"temporada"`
	Points         Count  `json:"pontos"`
	Participations Count  `json:"participacoes"`
	P1             Count  `json:"p1"`
	Podiums        Count  `json:"podios"`
	BestHand       Count  `json:"melhor_mao"`
	RebuyTotal     Count  `json:"rebuy_total"`
	// Position is the final ranking position; 0 when unknown.
	Position Count `json:"posicao"`
}

// UnmarshalJSON accepts numeric years and season labels.
func (s *SeasonSummary) UnmarshalJSON(b []byte) error {
	type plain SeasonSummary
	aux := struct {
		*plain
		Year   Text `json:"ano"`
		Season Text `json:"temporada"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.Year, s.Season = string(aux.Year), string(aux.Season)
	return nil
}

// RoundRecord is one round of a player's single-season history.
type RoundRecord struct {
	RoundID          string `json:"id_rodada"`
	Date             string `json:"data"`
	Year             string `json:"ano"`
	Season           string `json:"temporada"`
	Round            string `json:"rodada"`
	Placement        Count  `json:"colocacao"`
	Participated     Flag   `json:"participou"`
	CSB              Flag   `json:"foi_csb"`
	BestHand         Flag   `json:"melhor_mao"`
	Points           Count  `json:"pontos"`
	Rebuy            Count  `json:"rebuy"`
	Addon            Count  `json:"addon"`
	Paid             Amount `json:"pagou"`
	Received         Amount `json:"recebeu"`
	Balance          Amount `json:"saldo"`
	CumulativePoints Count  `json:"pontos_acumulados"`
	RankingPosition  Count  `json:"posicao_ranking"`
}

// UnmarshalJSON accepts numeric labels for ids, years, seasons and rounds.
func (r *RoundRecord) UnmarshalJSON(b []byte) error {
	type plain RoundRecord
	aux := struct {
		*plain
		RoundID Text `json:"id_rodada"`
		Date    Text `json:"data"`
		Year    Text `json:"ano"`
		Season  Text `json:"temporada"`
		Round   Text `json:"rodada"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.RoundID, r.Date = string(aux.RoundID), string(aux.Date)
	r.Year, r.Season, r.Round = string(aux.Year), string(aux.Season), string(aux.Round)
	return nil
}
