package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"recruit_portal_backend/internal/events"
	"recruit_portal_backend/internal/funnel/taxonomyfile"
	"recruit_portal_backend/internal/reports"
	reportsservice "recruit_portal_backend/internal/reports/service"
	"recruit_portal_backend/internal/scheduler"
	"recruit_portal_backend/internal/targets"
	"recruit_portal_backend/platform/cache"
	"recruit_portal_backend/platform/config"
	"recruit_portal_backend/platform/db"
	"recruit_portal_backend/platform/logger"
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

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg, "recruit-scheduler")
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

	taxonomy, err := taxonomyfile.Load(cfg.GetTaxonomyFile())
	if err != nil {
		log.Error("failed to load status taxonomy", "error", err)
		panic("failed to load status taxonomy: " + err.Error())
	}

	// The worker refreshes the same Redis cache the API reads from.
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize report cache", "error", err)
		panic("failed to initialize report cache: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side report wiring (no HTTP handlers required).
	targetsModule := targets.NewModule(pool, eventBus, val, log)
	reportsModule := reports.NewModule(pool, targetsModule.Service(), cache.New(redisClient, "reports"), nil, val, log, reportsservice.Options{
		Taxonomy:      taxonomy,
		RolloverMonth: cfg.GetFiscalRolloverMonth(),
		Location:      cfg.GetReportsLocation(),
		CacheTTL:      cfg.GetReportsCacheTTL(),
	})
	reportsModule.RegisterHandlers(eventBus)

	warmInterval := getDurationEnv("REPORTS_WARM_INTERVAL", 15*time.Minute)
	warmer := scheduler.NewCurrentMonthWarmer(reportsModule.Service(), log, warmInterval, cfg.GetReportsLocation())
	go warmer.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
