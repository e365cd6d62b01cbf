package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruit_portal_backend/internal/events"
	"recruit_portal_backend/internal/funnel/taxonomyfile"
	apphttp "recruit_portal_backend/internal/http"
	"recruit_portal_backend/internal/http/router"
	"recruit_portal_backend/internal/reports"
	reportsservice "recruit_portal_backend/internal/reports/service"
	"recruit_portal_backend/internal/targets"
	"recruit_portal_backend/platform/cache"
	"recruit_portal_backend/platform/config"
	"recruit_portal_backend/platform/db"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/metrics"
	"recruit_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.RequireDatabase(); err != nil {
		panic("invalid config: " + err.Error())
	}
	if err := cfg.RequireJWT(); err != nil {
		panic("invalid config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg, "recruit-api")
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	taxonomy, err := taxonomyfile.Load(cfg.GetTaxonomyFile())
	if err != nil {
		log.Error("failed to load status taxonomy", "error", err, "file", cfg.GetTaxonomyFile())
		panic("failed to load status taxonomy: " + err.Error())
	}
	log.Info("status taxonomy loaded", "aliases", taxonomy.Len(), "file", cfg.GetTaxonomyFile())

	health := map[string]apphttp.HealthChecker{"database": pool}

	// Report cache (Redis); reports are computed on every request without it
	var reportCache reportsservice.Cache
	if cfg.GetRedisURL() != "" {
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to initialize report cache", "error", err)
			panic("failed to initialize report cache: " + err.Error())
		}
		defer func() { _ = client.Close() }()
		redisCache := cache.New(client, "reports")
		reportCache = redisCache
		health["redis"] = redisCache
		log.Info("report cache enabled", "ttl", cfg.GetReportsCacheTTL().String())
	} else {
		log.Warn("REDIS_URL not configured; report cache disabled")
	}

	registry := metrics.New()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	targetsModule := targets.NewModule(pool, eventBus, val, log)
	reportsModule := reports.NewModule(pool, targetsModule.Service(), reportCache, registry, val, log, reportsservice.Options{
		Taxonomy:          taxonomy,
		RolloverMonth:     cfg.GetFiscalRolloverMonth(),
		Location:          cfg.GetReportsLocation(),
		CacheTTL:          cfg.GetReportsCacheTTL(),
		ExposeDiagnostics: cfg.GetExposeDiagnostics(),
	})
	reportsModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Metrics:  registry,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			targetsModule,
			reportsModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
