package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lumenex/matchbook/internal/config"
	"github.com/lumenex/matchbook/internal/httpapi"
	"github.com/lumenex/matchbook/internal/lane"
	"github.com/lumenex/matchbook/internal/logging"
	"github.com/lumenex/matchbook/internal/metrics"
	"github.com/lumenex/matchbook/internal/storage"
	"github.com/lumenex/matchbook/internal/wsapi"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := config.FromEnv()
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	store, err := storage.Open(cfg.StorageKind, cfg.StorageDSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	lanes, err := lane.New(cfg.Tickers, cfg.SnapshotDepth, store, m, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct lane controller")
	}
	if err := lanes.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start lane controller")
	}

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(lanes),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	wsSrv := &http.Server{
		Addr:         cfg.WSAddr,
		Handler:      wsapi.NewMux(wsapi.NewHandlers(lanes.Primary().Publisher(), log)),
		ReadTimeout:  0, // long-lived streaming connections
		WriteTimeout: 0,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting intake/query HTTP server")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.WSAddr).Msg("starting streaming server")
		if err := wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ws server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = wsSrv.Shutdown(shutdownCtx)
	if err := lanes.Stop(); err != nil {
		log.Error().Err(err).Msg("lane controller shutdown error")
	}
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("storage shutdown error")
	}
}
