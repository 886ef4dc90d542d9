package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/pokerleague/internal/adapters/upstream"
	"github.com/okian/pokerleague/internal/domain/model"
)

// FakeUpstream is an in-memory league API for tests.
type FakeUpstream struct {
	mu sync.Mutex

	Refs       []model.SeasonRef
	RefsErr    error
	RoundList  []model.Round
	RoundsErr  error
	Rankings   map[string][]model.RankingRow // keyed by year-season
	RankingErr error
	General    []model.RankingRow
	GeneralErr error
	Players    map[string]*model.PlayerResponse // keyed by year|season|id
	Delay      time.Duration

	calls map[string]int
}

func (f *FakeUpstream) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

// Calls returns how many times a method was called.
func (f *FakeUpstream) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *FakeUpstream) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(f.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeUpstream) SeasonRefs(ctx context.Context) ([]model.SeasonRef, error) {
	f.record("SeasonRefs")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(f.Refs), f.RefsErr
}

func (f *FakeUpstream) Rounds(ctx context.Context) ([]model.Round, error) {
	f.record("Rounds")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(f.RoundList), f.RoundsErr
}

func (f *FakeUpstream) SeasonRanking(ctx context.Context, year, season string) ([]model.RankingRow, error) {
	f.record("SeasonRanking")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.RankingErr != nil {
		return nil, f.RankingErr
	}
	rows := slices.Clone(f.Rankings[year+"-"+season])
	if rows == nil {
		rows = []model.RankingRow{}
	}
	return rows, nil
}

func (f *FakeUpstream) GeneralRanking(ctx context.Context) ([]model.RankingRow, error) {
	f.record("GeneralRanking")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(f.General), f.GeneralErr
}

func (f *FakeUpstream) Player(ctx context.Context, year, season, playerID string) (*model.PlayerResponse, error) {
	f.record("Player")
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	resp, ok := f.Players[year+"|"+season+"|"+playerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", upstream.ErrPlayerNotFound, playerID)
	}
	return resp, nil
}

// Publish exposes snapshot publishing to tests.
func (s *Service) Publish(token uint64, view HomeView) bool {
	return s.publish(token, view)
}

// NextToken draws a build token.
func (s *Service) NextToken() uint64 {
	return s.seq.Add(1)
}
