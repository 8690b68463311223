package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/locavail/locavail/server/internal/api"
	"github.com/locavail/locavail/server/internal/availability"
	"github.com/locavail/locavail/server/internal/config"
	"github.com/locavail/locavail/server/internal/metrics"
	"github.com/locavail/locavail/server/internal/session"
	"github.com/locavail/locavail/server/internal/sheets"
	"github.com/locavail/locavail/server/internal/web"
	"github.com/locavail/locavail/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file; empty uses built-in defaults")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("locavail-server starting", "config", *configPath)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"locations_url", cfg.Sheets.LocationsURL,
		"connections_url", cfg.Sheets.ConnectionsURL,
		"cache_ttl", cfg.Sheets.CacheTTL,
		"session_idle_ttl", cfg.Server.Session.IdleTTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()

	// Sheet fetches go through a process-wide TTL cache.
	cache := sheets.NewCache(sheets.NewClient(cfg.Sheets), cfg.Sheets.CacheTTL, m)
	svc := availability.NewService(cache, sourcesFrom(cfg.Sheets), m.Render)

	reg := session.NewRegistry(cfg.Server.Session.IdleTTL)
	m.SetSessionsFunc(reg.Count)
	mgr, err := session.NewManager(cfg.Server.Session, reg)
	if err != nil {
		slog.Error("failed to set up sessions", "err", err)
		os.Exit(1)
	}

	hub := ws.New()

	srv := web.NewServer(web.Options{
		Port:     cfg.Server.HTTPPort,
		Service:  svc,
		Cache:    cache,
		Sessions: mgr,
		Metrics:  m,
		Hub:      hub,
		API:      api.New(svc, cache, reg),
	})

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return srv.Serve(egctx) })
	eg.Go(func() error {
		reg.Run(egctx)
		return nil
	})
	eg.Go(func() error {
		hub.Run(egctx)
		return nil
	})

	// Hot reload: sources and cache TTL take effect on the next render.
	// Port and session settings need a restart.
	if *configPath != "" {
		eg.Go(func() error {
			err := config.Watch(egctx, *configPath, func(next *config.Config) {
				cache.SetTTL(next.Sheets.CacheTTL)
				svc.SetSources(sourcesFrom(next.Sheets))
				slog.Info("sheet sources updated",
					"locations_url", next.Sheets.LocationsURL,
					"connections_url", next.Sheets.ConnectionsURL,
					"cache_ttl", next.Sheets.CacheTTL,
				)
			})
			if err != nil {
				slog.Warn("config watch disabled", "err", err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		slog.Error("locavail-server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("locavail-server shut down")
}

func sourcesFrom(cfg config.SheetsConfig) availability.Sources {
	return availability.Sources{
		LocationsURL:   cfg.LocationsURL,
		ConnectionsURL: cfg.ConnectionsURL,
		UsedColumns:    cfg.UsedColumns,
	}
}
