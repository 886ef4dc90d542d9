package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/pokerleague/internal/domain/season"
	"github.com/okian/pokerleague/pkg/logger"
	"github.com/okian/pokerleague/pkg/metrics"
)

// snapshot is a published default home view. token orders snapshots: a
// build started later always carries a larger token.
type snapshot struct {
	token uint64
	at    time.Time
	view  HomeView
}

var errIncompleteView = errors.New("home view has failed sections")

func (s *Service) currentSnapshot() *snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot
}

// publish installs view unless a snapshot with the same or a newer token is
// already published, so a slow build never overwrites a newer one.
func (s *Service) publish(token uint64, view HomeView) bool {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	if s.snapshot != nil && s.snapshot.token >= token {
		s.stale.Add(1)
		metrics.RecordSnapshotRefresh("stale")
		return false
	}

	now := time.Now()
	s.snapshot = &snapshot{token: token, at: now, view: view}
	metrics.RecordSnapshotRefresh("published")
	metrics.UpdateSnapshotPublished(now.Unix())
	return true
}

func (s *Service) refreshLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn(ctx, "snapshot refresh failed", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh rebuilds the default home view and publishes it if no newer build
// has been published meanwhile.
func (s *Service) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, max(s.refreshInterval, time.Minute))
	defer cancel()

	token := s.seq.Add(1)
	s.refreshes.Add(1)

	view, err := s.buildHome(ctx, season.Selection{})
	if err == nil && !view.complete() {
		err = errIncompleteView
	}
	if err != nil {
		metrics.RecordSnapshotRefresh("failed")
		return err
	}
	s.publish(token, view)
	return nil
}
