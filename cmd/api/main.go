package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"statuspulse/internal/aggregate"
	"statuspulse/internal/config"
	"statuspulse/internal/httpapi"
	apimw "statuspulse/internal/httpapi/middleware"
	"statuspulse/internal/incident"
	"statuspulse/internal/logging"
	"statuspulse/internal/probe"
	"statuspulse/internal/query"
	"statuspulse/internal/repo"
	"statuspulse/internal/repo/memory"
	"statuspulse/internal/repo/postgres"
	"statuspulse/internal/repo/sqlite"
	"statuspulse/internal/scheduler"
	"statuspulse/internal/status"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_error", zap.Error(err))
	}
	defer closeStore()

	tracker := incident.NewTracker(store, store, logger)
	deriver := status.NewDeriver(store)
	facade := query.NewFacade(store, store, store, deriver)
	aggregator := aggregate.New(store, store, store, logger)

	if cfg.ProbeTick > 0 {
		var prober probe.Prober = probe.NewHTTPProber()
		if cfg.RetryAttempts > 1 {
			prober = &probe.RetryProber{Inner: prober, Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
		}
		loop := scheduler.NewProbeLoop(logger, store, tracker, prober, cfg.ProbeTick, cfg.MaxConcurrent)
		go loop.Run(ctx)
	} else {
		logger.Info("probe_loop_disabled")
	}

	if cfg.RollupInterval > 0 {
		go scheduler.NewRollupLoop(logger, aggregator, cfg.RollupInterval).Run(ctx)
	} else {
		logger.Info("rollup_loop_disabled")
	}

	api := httpapi.NewServer(logger, store, store, facade, tracker)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(keys, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
	}

	go func() {
		<-ctx.Done()
		logger.Info("api_shutdown")
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("driver", cfg.DatabaseDriver),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("api_serve_error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.Store, func(), error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		s, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "memory":
		return memory.New(), func() {}, nil
	default:
		s, err := sqlite.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}
