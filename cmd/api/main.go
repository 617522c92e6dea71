package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ahonkala/meepledex-backend/api/routes"
	"github.com/ahonkala/meepledex-backend/internal/admins"
	"github.com/ahonkala/meepledex-backend/internal/bggimport"
	"github.com/ahonkala/meepledex-backend/internal/buylist"
	"github.com/ahonkala/meepledex-backend/internal/games"
	"github.com/ahonkala/meepledex-backend/internal/sleeves"
	"github.com/ahonkala/meepledex-backend/pkg/bgg"
	"github.com/ahonkala/meepledex-backend/pkg/cloudinary"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/db"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/migrate"
	"github.com/ahonkala/meepledex-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	var cloudinaryClient *cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloudinaryClient, err = cloudinary.NewClient(cfg.Cloudinary)
		if err != nil {
			logg.Error(context.Background(), "failed to create cloudinary client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "cloudinary not configured; cover delivery disabled")
	}

	bggClient, err := bgg.NewClient(cfg.BGG, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create bgg client", err)
		os.Exit(1)
	}

	gamesRepo := games.NewRepository(dbClient.DB())
	gamesService, err := games.NewService(games.ServiceParams{
		Repo:       gamesRepo,
		Cloudinary: cloudinaryClient,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create games service", err)
		os.Exit(1)
	}

	sleevesService, err := sleeves.NewService(sleeves.ServiceParams{
		Storage: sleeves.NewRepository(dbClient.DB()),
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sleeves service", err)
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

	importService, err := bggimport.NewService(bggimport.ServiceParams{
		GamesRepo: gamesRepo,
		Fetcher:   bggClient,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	adminsService, err := admins.NewService(admins.ServiceParams{
		Repo:   admins.NewRepository(dbClient.DB()),
		JWT:    cfg.JWT,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admins service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Redis:      redisClient,
			Admins:     adminsService,
			Games:      gamesService,
			Sleeves:    sleevesService,
			BuyList:    buyListService,
			Importer:   importService,
			Cloudinary: cloudinaryClient,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		logg.Info(ctx, "shutting down api server")
		timeout, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeout); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
