package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"mall_admin/internal/adapters/observability"
	redisad "mall_admin/internal/adapters/redis"
	"mall_admin/internal/adapters/seedsource"
	"mall_admin/internal/app"
	"mall_admin/internal/domain"
	"mall_admin/internal/layout"
	"mall_admin/internal/shared"
	"mall_admin/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	source := flag.String("source", cfg.SeedSource, "seed document path or http(s) URL")
	flag.Parse()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if *source == "" {
		log.Fatal().Msg("no seed source: set SEED_SOURCE or -source")
	}
	log.Info().
		Str("source", *source).
		Str("storage", cfg.StorageBackend).
		Int("workers", cfg.SeedWorkers).
		Msg("seed starting")

	repo, closeRepo, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage open failed")
	}
	defer closeRepo()

	floor, err := layout.Load(cfg.LayoutPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LayoutPath).Msg("layout load failed")
	}

	// seeding through the API's cache keeps its read caches consistent
	var cache domain.Cache = app.NopCache{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	raw, err := seedsource.New(5).Load(ctx, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("seed load failed")
	}
	doc, err := app.ParseSeed(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("seed parse failed")
	}

	cmds := app.NewMallService(repo, floor, cache, nil)
	res, err := app.NewSeeder(cmds, repo, cfg.SeedWorkers).Apply(ctx, doc)
	if err != nil {
		log.Fatal().Err(err).
			Int("shops_created", res.ShopsCreated).
			Msg("seed failed")
	}
	log.Info().Msg("seed completed")
}
