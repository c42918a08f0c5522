package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/oggyb/moodfriends/internal/app"
	"github.com/oggyb/moodfriends/internal/cache"
	"github.com/oggyb/moodfriends/internal/config"
	"github.com/oggyb/moodfriends/internal/db"
	"github.com/oggyb/moodfriends/internal/logger"
	"github.com/oggyb/moodfriends/internal/metrics"
	"github.com/oggyb/moodfriends/internal/seed"
	"github.com/oggyb/moodfriends/internal/server"
	"github.com/oggyb/moodfriends/internal/service/friends"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Inject logger and config into app context
	appCtx := app.New(database, redisCache, log, cfg)

	registrars := []server.Registrar{
		friends.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == config.EnvDevelopment {
		loader := seed.NewLoader(database, seed.Options{
			Credentials:   seed.Credentials{Password: cfg.Seed.Password, Cost: cfg.Seed.HashCost},
			DedupMessages: true,
		}, log)
		if _, err := loader.Run(context.Background(), seed.DefaultManifest()); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	if cfg.Metrics.Addr != "" {
		metricsSrv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("serving metrics", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", "err", err)
			}
		}()
	}

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(cfg, log, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}
