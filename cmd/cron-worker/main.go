package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/mixbar-backend/internal/bootstrap"
	"github.com/angelmondragon/mixbar-backend/internal/cron"
	"github.com/angelmondragon/mixbar-backend/pkg/config"
	"github.com/angelmondragon/mixbar-backend/pkg/db"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
	"github.com/angelmondragon/mixbar-backend/pkg/metrics"
	"github.com/angelmondragon/mixbar-backend/pkg/migrate"
	"github.com/angelmondragon/mixbar-backend/pkg/redis"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit (for external schedulers)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *once); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, once bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "interval": cfg.Cron.Interval.String()})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	// The sweep lease lives in redis, so the worker needs it even when the
	// api runs without a cache.
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	services, err := bootstrap.NewServices(cfg, logg, dbClient, redisClient, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}

	service, err := newCronService(cfg, logg, services, redisClient)
	if err != nil {
		return err
	}

	if once {
		logg.Info(ctx, "running single cron cycle")
		return service.RunOnce(ctx)
	}
	logg.Info(ctx, "starting cron worker")
	err = service.Run(ctx)
	logg.Info(ctx, "cron worker shutting down")
	return err
}

func newCronService(cfg *config.Config, logg *logger.Logger, services *bootstrap.Services, redisClient *redis.Client) (*cron.Service, error) {
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Cron.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("cron lock: %w", err)
	}
	staleCarts, err := cron.NewStaleCartJob(cron.StaleCartJobParams{
		Carts:     services.Cart,
		IdleAfter: cfg.Cron.StaleCartAfter,
		BatchSize: cfg.Cron.StaleCartBatch,
	})
	if err != nil {
		return nil, fmt.Errorf("stale cart job: %w", err)
	}

	registry := cron.NewRegistry()
	if err := registry.Register(staleCarts); err != nil {
		return nil, err
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
}
