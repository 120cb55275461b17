package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/linaspasv/cms/internal/adapter/content"
	"github.com/linaspasv/cms/internal/adapter/httpserver"
	"github.com/linaspasv/cms/internal/adapter/metrics"
	"github.com/linaspasv/cms/internal/adapter/postgres"
	"github.com/linaspasv/cms/internal/adapter/redis"
	"github.com/linaspasv/cms/internal/app"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/linaspasv/cms/internal/nocache"
	"github.com/linaspasv/cms/internal/platform/config"
	"github.com/linaspasv/cms/internal/platform/logging"
	"github.com/linaspasv/cms/internal/platform/retry"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
)

const startupTimeout = 60 * time.Second

func runGracefulShutdown(srv *httpserver.Server, timeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func startupPolicy(clock clockwork.Clock, dependency string) retry.Policy {
	p := retry.Startup(clock)
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Dependency not ready, retrying", "dependency", dependency, "attempt", attempt, "backoff", backoff, "error", err)
	}
	return p
}

func setupDB(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) *pgxpool.Pool {
	tracer := postgres.NewMetricsTracer(metrics.NewDBMetrics(reg), clock)

	pool, err := retry.Do(ctx, startupPolicy(clock, "postgres"), retry.Transient, func(ctx context.Context) (*pgxpool.Pool, error) {
		return postgres.Connect(ctx, cfg.DatabaseURL, tracer)
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) *goredis.Client {
	redisMetrics := metrics.NewRedisMetrics(reg)
	hooks := []goredis.Hook{
		redis.NewMetricsHook(redisMetrics, clock),
		redis.NewCircuitBreakerHook(redisMetrics, clock),
	}

	client, err := retry.Do(ctx, startupPolicy(clock, "redis"), retry.Transient, func(ctx context.Context) (*goredis.Client, error) {
		return redis.NewClient(ctx, cfg.RedisURL, hooks...)
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupContent(cfg *config.Config) (*content.Catalog, map[string]string) {
	catalog, err := content.Load(cfg.ContentFile)
	if err != nil {
		slog.Error("Failed to load content", "file", cfg.ContentFile, "error", err)
		os.Exit(1)
	}

	views, err := content.LoadViews(cfg.ViewsDir)
	if err != nil {
		slog.Error("Failed to load views", "dir", cfg.ViewsDir, "error", err)
		os.Exit(1)
	}

	slog.Info("Content loaded", "collections", len(catalog.Collections()), "views", len(views))
	return catalog, views
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStartup()

	reg := metrics.NewRegistry()
	instruments := httpserver.NewInstruments(reg, cfg.CPRoute)

	pool := setupDB(startupCtx, cfg, reg, clock)
	defer pool.Close()

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
	}

	var store nocache.Store
	if cfg.RedisURL != "" {
		redisClient := setupRedis(startupCtx, cfg, reg, clock)
		defer func() { _ = redisClient.Close() }()

		store = redis.NewNocacheStore(redisClient, instruments.Nocache)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		slog.Warn("REDIS_URL not set, nocache sessions are kept in memory")
		store = nocache.NewMemoryStore(clock)
	}

	catalog, views := setupContent(cfg)
	urls := nav.NewURLs(cfg.SiteURL, cfg.CPRoute, nil)
	registry := nav.NewRegistry(urls, catalog)

	navSvc := app.NewNavService(registry, postgres.NewPreferenceRepo(pool, clock), postgres.NewUserRepo(pool))
	pageSvc := app.NewPageService(catalog, store, nocache.NewTemplateRenderer(views), urls, clock)

	srv := httpserver.NewServer(cfg, navSvc, pageSvc, instruments, healthChecks, clock)

	done := runGracefulShutdown(srv, cfg.ShutdownTimeout)

	if err := srv.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
