package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "mall_admin/internal/adapters/http_server"
	"mall_admin/internal/adapters/notify"
	"mall_admin/internal/adapters/observability"
	redisad "mall_admin/internal/adapters/redis"
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

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	repo, closeRepo, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("storage open failed")
	}
	defer closeRepo()

	floor, err := layout.Load(cfg.LayoutPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LayoutPath).Msg("layout load failed")
	}

	var cache domain.Cache = app.NopCache{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, continuing without cache")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	hub := notify.NewHub()
	go hub.Run(ctx)

	q := app.NewQueryService(repo, floor, cache, cfg.CacheTTL)
	cmds := app.NewMallService(repo, floor, cache, hub)

	// http
	srv := server.New(server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		WriteRPS:       cfg.WriteRPS,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:         q,
		C:         cmds,
		WS:        hub.Handler(cfg.AllowedOrigins),
		StaticDir: cfg.StaticDir,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.StorageBackend).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	<-hub.Done()
}
