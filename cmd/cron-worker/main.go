package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahonkala/meepledex-backend/internal/bggimport"
	"github.com/ahonkala/meepledex-backend/internal/buylist"
	"github.com/ahonkala/meepledex-backend/internal/cron"
	"github.com/ahonkala/meepledex-backend/internal/games"
	"github.com/ahonkala/meepledex-backend/pkg/bgg"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/db"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/metrics"
	"github.com/ahonkala/meepledex-backend/pkg/migrate"
	"github.com/ahonkala/meepledex-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	bggClient, err := bgg.NewClient(cfg.BGG, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create bgg client", err)
		os.Exit(1)
	}

	gamesRepo := games.NewRepository(dbClient.DB())
	importService, err := bggimport.NewService(bggimport.ServiceParams{
		GamesRepo: gamesRepo,
		Fetcher:   bggClient,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	buyListService, err := buylist.NewService(buylist.ServiceParams{
		Repo:   buylist.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create buy list service", err)
		os.Exit(1)
	}

	bggSyncJob, err := cron.NewBGGSyncJob(cron.BGGSyncJobParams{
		Logger:     logg,
		Importer:   importService,
		StaleAfter: cfg.BGG.SyncStaleAfter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bgg sync job", err)
		os.Exit(1)
	}

	priceRefreshJob, err := cron.NewPriceRefreshJob(cron.PriceRefreshJobParams{
		Logger:  logg,
		BuyList: buyListService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create price refresh job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(bggSyncJob, priceRefreshJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
