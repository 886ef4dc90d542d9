package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/pokerleague/internal/adapters/cache"
	"github.com/okian/pokerleague/internal/adapters/http/api"
	"github.com/okian/pokerleague/internal/adapters/http/site"
	"github.com/okian/pokerleague/internal/adapters/http/swagger"
	"github.com/okian/pokerleague/internal/adapters/upstream"
	service "github.com/okian/pokerleague/internal/app"
	"github.com/okian/pokerleague/internal/config"
	"github.com/okian/pokerleague/pkg/logger"
	"github.com/okian/pokerleague/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// The logger is not available yet.
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithConstLabels(cfg.ConstLabels()),
		metrics.WithHistogramBuckets(cfg.MetricsBucketsMS),
	)

	if cfg.APIBase == "" {
		loggerInstance.Warn(ctx, "api_base is not set; data endpoints will answer config_missing")
	}

	responses := newCache(cfg)
	svc := newService(cfg, responses, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc, responses)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("api_base", cfg.APIBase))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newCache builds the upstream response cache; nil when disabled.
func newCache(cfg *config.Config) cache.Cache {
	if cfg.CacheSize <= 0 || cfg.CacheTTLMS <= 0 {
		return nil
	}
	return cache.NewInMemoryCache(
		cache.WithMaxSize(cfg.CacheSize),
		cache.WithTTL(cfg.CacheTTL()),
	)
}

// newService wires the upstream client into the league service.
func newService(cfg *config.Config, responses cache.Cache, log logger.Logger) *service.Service {
	opts := []upstream.Option{
		upstream.WithTimeout(cfg.RequestTimeout()),
		upstream.WithRateLimit(cfg.UpstreamRPS, cfg.UpstreamBurst),
		upstream.WithLogger(log.Named("upstream")),
	}
	if responses != nil {
		opts = append(opts, upstream.WithCache(responses))
	}
	client := upstream.NewClient(cfg.APIBase, opts...)

	return service.New(client,
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithMinParticipations(cfg.MinParticipations),
		service.WithPodiumSize(cfg.PodiumSize),
		service.WithHiddenPlayers(cfg.HiddenPlayerIDs...),
		service.WithRefreshInterval(cfg.RefreshInterval()),
	)
}

// newRouter registers docs, API and dashboard routes.
func newRouter(ctx context.Context, cfg *config.Config, svc *service.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	swagger.Register(ctx, r)

	apiServer := api.NewServer(svc, svc, api.WithCORSOrigins(cfg.CORSAllowedOrigins...))
	apiServer.Register(ctx, r)

	// The dashboard shell claims every remaining path, so it goes last.
	site.Register(ctx, r, site.WithPlayersDir(cfg.PlayersDir))
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically refreshes service-level gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service, responses cache.Cache) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc, responses)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics publishes the cache size and logs the service stats.
// Expired cache entries are only dropped on access, so the size gauge is
// refreshed here as well as on writes.
func updateServiceMetrics(ctx context.Context, svc *service.Service, responses cache.Cache) {
	if responses != nil {
		metrics.UpdateCacheSize(responses.Size())
	}
	stats := svc.GetStats()
	logger.Get().Named("stats").Debug(ctx, "service stats",
		logger.Any("refreshes", stats["refreshes"]),
		logger.Any("staleDiscarded", stats["staleDiscarded"]),
		logger.Any("snapshotAt", stats["snapshotAt"]))
}
