package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/moodfriends/internal/config"
	"github.com/oggyb/moodfriends/internal/db"
	"github.com/oggyb/moodfriends/internal/logger"
	"github.com/oggyb/moodfriends/internal/seed"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg := config.New()

	logger.InitFromConfig(cfg)
	log := logger.L()

	if err := cfg.ValidateSeed(); err != nil {
		log.Error("seeding not allowed", "err", err)
		return 1
	}

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := seed.NewLoader(database, seed.Options{
		Credentials:   seed.Credentials{Password: cfg.Seed.Password, Cost: cfg.Seed.HashCost},
		MoodsAlways:   cfg.Seed.MoodsAlways,
		DedupMessages: cfg.Seed.DedupMessages,
	}, log)

	summary, err := loader.Run(ctx, seed.DefaultManifest())
	fmt.Print(summary)
	if err != nil {
		log.Error("seeding finished with errors", "err", err)
		return 1
	}

	log.Info("seeding completed")
	return 0
}
