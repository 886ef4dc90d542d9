package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/okian/pokerleague/internal/adapters/worker"
	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/ranking"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/internal/domain/stats"
	"github.com/okian/pokerleague/pkg/logger"
)

var playerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// ValidPlayerID trims id and checks it is a plausible league id.
func ValidPlayerID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !playerIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlayerID, id)
	}
	return id, nil
}

// Player builds the all-time profile of a player. The general position and
// the recent season histories are secondary: when they fail the profile is
// still returned with those sections empty.
func (s *Service) Player(ctx context.Context, id string) (PlayerView, error) {
	id, err := ValidPlayerID(id)
	if err != nil {
		return PlayerView{}, err
	}

	var (
		wg         sync.WaitGroup
		resp       *model.PlayerResponse
		general    []model.RankingRow
		respErr    error
		generalErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		resp, respErr = s.upstream.Player(ctx, season.All, season.All, id)
	}()
	go func() {
		defer wg.Done()
		general, generalErr = s.upstream.GeneralRanking(ctx)
	}()
	wg.Wait()

	if respErr != nil {
		return PlayerView{}, respErr
	}

	view := PlayerView{
		PlayerID: id,
		Name:     id,
		Photo:    "/players/" + url.PathEscape(id) + ".png",
		Seasons:  resp.Seasons,
	}
	if view.Seasons == nil {
		view.Seasons = []model.SeasonSummary{}
	}

	var own model.RankingRow
	if resp.Player != nil {
		own = resp.Player.RankingRow
		view.PlayingSince = resp.Player.PlayingSince
		if own.Name != "" {
			view.Name = own.Name
		}
	}

	points := own.Points.Int()
	if generalErr != nil {
		view.Position.Error = sectionError(generalErr)
		s.logger.Warn(ctx, "general position unavailable",
			logger.String("player", id), logger.Error(generalErr))
	} else if rank, row, ok := ranking.PositionOf(general, id); ok {
		view.Position.Data = &Position{Rank: rank, Points: row.Points.Int()}
		points = row.Points.Int()
	}

	if best, ok := stats.BestCampaign(resp.Seasons); ok {
		view.BestCampaign = &best
	}
	view.KPIs = playerKPIs(own, resp, points)
	view.Finance = playerFinance(resp)
	view.Chart = stats.SeasonPoints(resp.Seasons, s.chartSeasons)
	view.Recent = s.recentHistories(ctx, id, resp.Seasons)

	if view.PlayingSince == "" {
		histories := make([][]model.RoundRecord, len(view.Recent))
		for i, h := range view.Recent {
			histories[i] = h.History
		}
		view.PlayingSince = stats.PlayingSince(histories...)
	}
	return view, nil
}

// PlayerSeason returns a player's record in one season.
func (s *Service) PlayerSeason(ctx context.Context, id, year, seasonLabel string) (PlayerSeasonView, error) {
	id, err := ValidPlayerID(id)
	if err != nil {
		return PlayerSeasonView{}, err
	}
	year = strings.TrimSpace(year)
	seasonLabel = season.Normalize(seasonLabel)
	if year == "" || seasonLabel == "" || year == season.All || seasonLabel == season.All {
		return PlayerSeasonView{}, fmt.Errorf("%w: a single year and season are required", ErrInvalidSelection)
	}

	resp, err := s.upstream.Player(ctx, year, seasonLabel, id)
	if err != nil {
		return PlayerSeasonView{}, err
	}

	view := PlayerSeasonView{
		PlayerID:     id,
		Name:         id,
		Year:         year,
		Season:       seasonLabel,
		Player:       resp.Player,
		Finance:      resp.Finance,
		Efficiency:   stats.SeasonEfficiencyExact(resp.History),
		LastPosition: stats.LastPosition(resp.History),
		Series:       stats.RoundSeries(resp.History),
		History:      resp.History,
	}
	if view.History == nil {
		view.History = []model.RoundRecord{}
	}
	if resp.Player != nil && resp.Player.Name != "" {
		view.Name = resp.Player.Name
	}
	return view, nil
}

// recentHistories fetches the newest seasons of a player concurrently. Each
// season carries its own error.
func (s *Service) recentHistories(ctx context.Context, id string, summaries []model.SeasonSummary) []SeasonHistory {
	refs := stats.RecentSeasons(summaries, s.recentSeasons)
	results := worker.Settle(ctx, s.pool, refs, func(ctx context.Context, ref model.SeasonRef) (*model.PlayerResponse, error) {
		return s.upstream.Player(ctx, ref.Year, ref.Season, id)
	})

	out := make([]SeasonHistory, len(refs))
	for i, ref := range refs {
		h := SeasonHistory{
			Key:     season.Key(ref.Year, ref.Season),
			Year:    ref.Year,
			Season:  ref.Season,
			Series:  []stats.RoundPoint{},
			History: []model.RoundRecord{},
		}
		if err := results[i].Err; err != nil {
			h.Error = sectionError(err)
			s.logger.Debug(ctx, "season history unavailable",
				logger.String("player", id), logger.String("season", h.Key), logger.Error(err))
			out[i] = h
			continue
		}
		if hist := results[i].Value.History; hist != nil {
			h.History = hist
		}
		h.Efficiency = stats.SeasonEfficiencyExact(h.History)
		h.LastPosition = stats.LastPosition(h.History)
		h.Series = stats.RoundSeries(h.History)
		out[i] = h
	}
	return out
}

// playerKPIs sums the season summaries. Participations prefer the player
// block over the all-time totals; points come from the general ranking.
func playerKPIs(own model.RankingRow, resp *model.PlayerResponse, points int) PlayerKPIs {
	k := PlayerKPIs{Participations: own.Participations.Int()}
	if k.Participations == 0 && resp.Totals != nil {
		k.Participations = resp.Totals.Participations.Int()
	}
	for _, s := range resp.Seasons {
		k.Wins += s.P1.Int()
		k.Podiums += s.Podiums.Int()
		k.BestHands += s.BestHand.Int()
		k.Rebuys += s.RebuyTotal.Int()
	}
	parts := float64(k.Participations)
	k.WinRate = stats.SafeDiv(float64(k.Wins), parts)
	k.PodiumRate = stats.SafeDiv(float64(k.Podiums), parts)
	k.PointsPerParticipation = stats.SafeDiv(float64(points), parts)
	return k
}

// playerFinance prefers the all-time totals and falls back to the period
// finance block.
func playerFinance(resp *model.PlayerResponse) model.Finance {
	if t := resp.Totals; t != nil {
		return model.Finance{Paid: t.TotalPaid, Received: t.TotalReceived, Balance: t.Net()}
	}
	if resp.Finance != nil {
		return *resp.Finance
	}
	return model.Finance{}
}
