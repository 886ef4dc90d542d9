package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/pokerleague/internal/adapters/worker"
	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/ranking"
	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/internal/domain/stats"
	"github.com/okian/pokerleague/pkg/logger"
	"github.com/okian/pokerleague/pkg/metrics"
)

// Seasons returns the filter catalogue and the default selection.
func (s *Service) Seasons(ctx context.Context) (SeasonsView, error) {
	refs, err := s.upstream.SeasonRefs(ctx)
	if err != nil {
		return SeasonsView{}, err
	}
	catalog := season.NewCatalog(refs)
	def := season.Latest(refs)
	return SeasonsView{
		Catalog: catalog,
		Default: def,
		Years:   catalog.YearOptions(true),
		Seasons: catalog.SeasonOptions(def.Year, true),
	}, nil
}

// Rounds returns the rounds matching sel.
func (s *Service) Rounds(ctx context.Context, sel season.Selection) ([]model.Round, error) {
	rounds, err := s.upstream.Rounds(ctx)
	if err != nil {
		return nil, err
	}
	sel = sel.Normalized()
	return stats.FilterRounds(rounds, sel.Year, sel.Season), nil
}

// Ranking returns the ranking of sel. An empty selection means the latest
// season; multi-season selections are fetched concurrently and aggregated.
func (s *Service) Ranking(ctx context.Context, sel season.Selection) (RankingView, error) {
	var refs []model.SeasonRef
	if !sel.Normalized().Single() {
		var err error
		if refs, err = s.upstream.SeasonRefs(ctx); err != nil {
			return RankingView{}, err
		}
	}
	return s.rankingFor(ctx, refs, resolveSelection(refs, sel))
}

// Home builds the season dashboard. The ranking, rounds and KPI sections
// fail independently; an error is returned only when nothing could load.
// The default selection is served from the refreshed snapshot when the
// refresher is enabled and one is available.
func (s *Service) Home(ctx context.Context, sel season.Selection) (HomeView, error) {
	if isDefault(sel) && s.refreshInterval > 0 {
		if snap := s.currentSnapshot(); snap != nil {
			return snap.view, nil
		}
		token := s.seq.Add(1)
		view, err := s.buildHome(ctx, sel)
		if err == nil && view.complete() {
			s.publish(token, view)
		}
		return view, err
	}
	return s.buildHome(ctx, sel)
}

func (s *Service) buildHome(ctx context.Context, sel season.Selection) (HomeView, error) {
	var (
		wg                sync.WaitGroup
		refs              []model.SeasonRef
		rounds            []model.Round
		refsErr, roundErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		refs, refsErr = s.upstream.SeasonRefs(ctx)
	}()
	go func() {
		defer wg.Done()
		rounds, roundErr = s.upstream.Rounds(ctx)
	}()
	wg.Wait()

	if refsErr != nil && roundErr != nil {
		return HomeView{}, refsErr
	}

	var view HomeView
	rankingErr := refsErr
	if refsErr == nil || sel.Normalized().Single() {
		sel = resolveSelection(refs, sel)
		view.Ranking.Data, rankingErr = s.rankingFor(ctx, refs, sel)
	} else {
		sel = sel.Normalized()
	}
	view.Selection = sel
	view.Ranking.Error = sectionError(rankingErr)
	if rankingErr != nil {
		s.logger.Warn(ctx, "home ranking unavailable", logger.Error(rankingErr))
	}

	if roundErr != nil {
		view.Rounds.Error = sectionError(roundErr)
		view.KPIs.Error = sectionError(roundErr)
		view.Rounds.Data = []model.Round{}
		s.logger.Warn(ctx, "home rounds unavailable", logger.Error(roundErr))
		return view, nil
	}
	filtered := stats.FilterRounds(rounds, sel.Year, sel.Season)
	view.Rounds.Data = filtered
	view.KPIs.Data = stats.RoundKPIs(filtered, len(view.Ranking.Data.Rows))
	return view, nil
}

func (s *Service) rankingFor(ctx context.Context, refs []model.SeasonRef, sel season.Selection) (RankingView, error) {
	pairs := season.Resolve(refs, sel)
	view := RankingView{Selection: sel, Seasons: pairs}

	var rows []model.RankingRow
	if sel.Single() {
		var err error
		if rows, err = s.upstream.SeasonRanking(ctx, sel.Year, sel.Season); err != nil {
			return view, err
		}
	} else {
		lists, err := worker.Run(ctx, s.pool, pairs, func(ctx context.Context, p model.SeasonRef) ([]model.RankingRow, error) {
			return s.upstream.SeasonRanking(ctx, p.Year, p.Season)
		})
		if err != nil {
			return view, err
		}
		start := time.Now()
		rows = ranking.Aggregate(lists...)
		metrics.RecordAggregation(len(lists), len(rows), float64(time.Since(start).Microseconds())/1000)
	}

	s.markHidden(rows)
	view.Rows = ranking.Ranked(rows)
	return view, nil
}

// markHidden flags hidden players as eliminated.
func (s *Service) markHidden(rows []model.RankingRow) {
	for i := range rows {
		if slices.Contains(s.hiddenPlayers, rows[i].PlayerID) {
			rows[i].Eliminated = true
		}
	}
}

func isDefault(sel season.Selection) bool {
	return strings.TrimSpace(sel.Year) == "" && strings.TrimSpace(sel.Season) == ""
}

func resolveSelection(refs []model.SeasonRef, sel season.Selection) season.Selection {
	if isDefault(sel) {
		return season.Latest(refs)
	}
	return sel.Normalized()
}

func (v HomeView) complete() bool {
	return v.Ranking.OK() && v.Rounds.OK() && v.KPIs.OK()
}
