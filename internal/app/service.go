// Package service composes the league domain into the views served by the
// HTTP API and the export CLI.
package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pokerleague/internal/adapters/worker"
	"github.com/okian/pokerleague/internal/domain/model"
	"github.com/okian/pokerleague/internal/domain/stats"
	"github.com/okian/pokerleague/pkg/logger"
)

// Upstream is the league data source.
type Upstream interface {
	SeasonRefs(ctx context.Context) ([]model.SeasonRef, error)
	Rounds(ctx context.Context) ([]model.Round, error)
	SeasonRanking(ctx context.Context, year, season string) ([]model.RankingRow, error)
	GeneralRanking(ctx context.Context) ([]model.RankingRow, error)
	Player(ctx context.Context, year, season, playerID string) (*model.PlayerResponse, error)
}

// Service implements the API dependencies for the league dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	upstream Upstream
	pool     *worker.Pool

	// Configuration
	workerCount       int
	minParticipations int
	podiumSize        int
	hiddenPlayers     []string
	refreshInterval   time.Duration
	chartSeasons      int
	recentSeasons     int

	// Snapshot of the default home view
	seq       atomic.Uint64
	snapMu    sync.RWMutex
	snapshot  *snapshot
	refreshes atomic.Int64
	stale     atomic.Int64

	// State
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount bounds concurrent upstream fetches per view.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMinParticipations sets the eligibility threshold of the all-time view.
func WithMinParticipations(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minParticipations = n
		}
	}
}

// WithPodiumSize sets how many players the all-time podium shows.
func WithPodiumSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.podiumSize = n
		}
	}
}

// WithHiddenPlayers removes ids from the all-time table and marks them as
// eliminated in season rankings.
func WithHiddenPlayers(ids ...string) Option {
	return func(s *Service) {
		s.hiddenPlayers = ids
	}
}

// WithRefreshInterval sets how often the default home view is rebuilt in
// the background. 0 or less disables the refresher.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		s.refreshInterval = d
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service reading from up.
func New(up Upstream, opts ...Option) *Service {
	s := &Service{
		upstream:          up,
		workerCount:       runtime.NumCPU(),
		minParticipations: stats.DefaultMinParticipations,
		podiumSize:        5,
		refreshInterval:   5 * time.Minute,
		chartSeasons:      8,
		recentSeasons:     2,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.pool = worker.NewPool(s.workerCount, worker.WithLogger(s.logger.Named("pool")))
	return s
}

// Start launches the snapshot refresher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting league service...")

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	if s.refreshInterval > 0 {
		go s.refreshLoop(context.WithoutCancel(ctx), s.stopCh, s.doneCh)
	} else {
		close(s.doneCh)
	}

	s.started = true
	s.logger.Info(ctx, "league service started",
		logger.Int("workers", s.workerCount),
		logger.Duration("refreshInterval", s.refreshInterval),
		logger.Int("minParticipations", s.minParticipations),
	)
	return nil
}

// Stop stops the refresher and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping league service...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	<-s.doneCh

	s.started = false
	s.logger.Info(context.Background(), "league service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"minParticipations": s.minParticipations,
		"refreshInterval":   s.refreshInterval.String(),
		"refreshes":         s.refreshes.Load(),
		"staleDiscarded":    s.stale.Load(),
	}

	if snap := s.currentSnapshot(); snap != nil {
		stats["snapshotToken"] = snap.token
		stats["snapshotAt"] = snap.at.UTC().Format(time.RFC3339)
	}
	return stats
}
