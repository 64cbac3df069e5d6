// Command server runs the parcel tracking HTTP gateway.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/parceltrack/tracking-system/internal/api"
	"github.com/parceltrack/tracking-system/internal/core/service"
	"github.com/parceltrack/tracking-system/internal/infrastructure/config"
	"github.com/parceltrack/tracking-system/internal/infrastructure/httpclient"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider"
	"github.com/parceltrack/tracking-system/pkg/logger"
)

// @title        Parcel Tracking Gateway API
// @version      1.0
// @description  Unified parcel tracking across Correos, CTT Express, DHL, DPD, Ecoscooting and GLS.
// @BasePath     /
func main() {
	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client := httpclient.New(cfg.HTTPTimeout)
	registry := provider.NewDefaultRegistry(client, cfg, log)
	tracker := service.NewTrackerService(registry, log)

	e := api.NewRouter(tracker, registry, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Strs("carriers", registry.Names()).Msg("starting tracking gateway")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
