package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/api"
	"github.com/urmzd/hive-hotwater/pkg/app"

	_ "github.com/urmzd/hive-hotwater/docs"
)

// @title           Hive Hotwater API
// @version         1.0
// @description     REST API for controlling Hive hot water heaters

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

const shutdownTimeout = 10 * time.Second

func main() {
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/hive-hotwater/hive-hotwater.db)")
	configPath := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.Options{DBPath: *dbPath, ConfigPath: *configPath})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer a.Close()

	a.Run(ctx)

	router := api.NewRouter(a.Controller, a.Subscriber, a.Validator)
	srv := &http.Server{
		Addr:              a.Settings.APIAddress(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().Str("address", srv.Addr).Msg("Starting API server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}
