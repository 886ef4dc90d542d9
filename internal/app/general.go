package service

import (
	"context"

	"github.com/okian/pokerleague/internal/domain/ranking"
	"github.com/okian/pokerleague/internal/domain/stats"
)

// General builds the all-time view. Only players with enough participations
// are ranked, podium-placed and considered for superlatives; hidden players
// are left out of the table only.
func (s *Service) General(ctx context.Context) (GeneralView, error) {
	rows, err := s.upstream.GeneralRanking(ctx)
	if err != nil {
		return GeneralView{}, err
	}

	eligible := stats.Eligible(rows, s.minParticipations)
	table := ranking.Without(eligible, s.hiddenPlayers...)

	return GeneralView{
		MinParticipations: s.minParticipations,
		Players:           len(table),
		Rows:              ranking.Ranked(table),
		Podium:            stats.Podium(eligible, s.podiumSize),
		Superlatives:      stats.Superlatives(eligible, stats.StandardSuperlatives()),
	}, nil
}
