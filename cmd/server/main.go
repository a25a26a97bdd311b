package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brightwater-dev/leadboard/internal/cache"
	"github.com/brightwater-dev/leadboard/internal/config"
	"github.com/brightwater-dev/leadboard/internal/crm"
	"github.com/brightwater-dev/leadboard/internal/dashboard"
	"github.com/brightwater-dev/leadboard/internal/fetch"
	"github.com/brightwater-dev/leadboard/internal/httpx"
	"github.com/brightwater-dev/leadboard/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	client := crm.NewClient(cfg.CRM)
	store := cache.New(cfg.CacheTTL)
	defer store.Close()

	orch := fetch.NewOrchestrator(client, cfg.CRM.ProjectID, cfg.CRM.DetailBatchSize)
	svc := dashboard.NewService(orch, client, store, cfg.CRM.ProjectID)
	presets := dashboard.NewPresetStore()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           httpx.NewRouter(svc, presets, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Int("project_id", cfg.CRM.ProjectID).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown incomplete")
		}
	}
}
