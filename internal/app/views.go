package service

import (
	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/internal/domain/stats"
	"github.com/okian/pokerleague/internal/domain/types"
)

// SeasonsView is the season filter catalogue and its default selection.
type SeasonsView struct {
	Catalog season.Catalog   `json:"catalogo"`
	Default season.Selection `json:"padrao"`
	Years   []string         `json:"opcoes_ano"`
	Seasons []string         `json:"opcoes_temporada"`
}

// RankingView is a ranking for a selection, with display ranks.
type RankingView struct {
	Selection season.Selection  `json:"selecao"`
	Seasons   []model.SeasonRef `json:"temporadas"`
	Rows      []types.RankedRow `json:"linhas"`
}

// HomeView is the season dashboard. Each section loads independently.
type HomeView struct {
	Selection season.Selection               `json:"selecao"`
	Ranking   types.Section[RankingView]     `json:"ranking"`
	KPIs      types.Section[types.RoundKPIs] `json:"kpis"`
	Rounds    types.Section[[]model.Round]   `json:"rodadas"`
}

// GeneralView is the all-time view.
type GeneralView struct {
	MinParticipations int                 `json:"min_participacoes"`
	Players           int                 `json:"jogadores"`
	Rows              []types.RankedRow   `json:"linhas"`
	Podium            []types.RankedRow   `json:"podio"`
	Superlatives      []stats.Superlative `json:"destaques"`
}

// PlayerKPIs are the headline numbers of a player profile.
type PlayerKPIs struct {
	Participations         int     `json:"participacoes"`
	Wins                   int     `json:"vitorias"`
	Podiums                int     `json:"podios"`
	BestHands              int     `json:"melhores_maos"`
	Rebuys                 int     `json:"rebuys"`
	WinRate                float64 `json:"taxa_vitoria"`
	PodiumRate             float64 `json:"taxa_podio"`
	PointsPerParticipation float64 `json:"aproveitamento"`
}

// Position is a player's place in the all-time ranking.
type Position struct {
	Rank   int `json:"posicao"`
	Points int `json:"pontos"`
}

// SeasonHistory is the round-by-round record of one recent season.
type SeasonHistory struct {
	Key          string              `json:"key"`
	Year         string              `json:"ano"`
	Season       string              `json:"temporada"`
	Efficiency   float64             `json:"eficiencia"`
	LastPosition int                 `json:"ultima_posicao"`
	Series       []stats.RoundPoint  `json:"serie"`
	History      []model.RoundRecord `json:"historico"`
	Error        *types.SectionError `json:"error,omitempty"`
}

// PlayerView is the all-time player profile.
type PlayerView struct {
	PlayerID     string                   `json:"id_jogador"`
	Name         string                   `json:"nome"`
	PlayingSince string                   `json:"joga_desde,omitempty"`
	Photo        string                   `json:"foto"`
	Position     types.Section[*Position] `json:"posicao_geral"`
	BestCampaign *stats.Campaign          `json:"melhor_campanha,omitempty"`
	KPIs         PlayerKPIs               `json:"kpis"`
	Finance      model.Finance            `json:"financeiro"`
	Seasons      []model.SeasonSummary    `json:"resumo_por_temporada"`
	Chart        []stats.SeasonPoint      `json:"grafico"`
	Recent       []SeasonHistory          `json:"ultimas_temporadas"`
}

// PlayerSeasonView is one player's record in a single season.
type PlayerSeasonView struct {
	PlayerID     string              `json:"id_jogador"`
	Name         string              `json:"nome"`
	Year         string              `json:"ano"`
	Season       string              `json:"temporada"`
	Player       *model.PlayerInfo   `json:"jogador,omitempty"`
	Finance      *model.Finance      `json:"financeiro,omitempty"`
	Efficiency   float64             `json:"eficiencia"`
	LastPosition int                 `json:"ultima_posicao"`
	Series       []stats.RoundPoint  `json:"serie"`
	History      []model.RoundRecord `json:"historico"`
}
