package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/app"
	hivemcp "github.com/urmzd/hive-hotwater/pkg/mcp"
)

var version = "dev"

func main() {
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/hive-hotwater/hive-hotwater.db)")
	configPath := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stdout is the MCP transport, so log.output must stay stderr.
	a, err := app.New(ctx, app.Options{DBPath: *dbPath, ConfigPath: *configPath})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	if a.Config.Log.Output != "stderr" {
		log.Warn().Str("output", a.Config.Log.Output).Msg("Logging to stdout corrupts the MCP transport")
	}
	defer a.Close()

	a.Run(ctx)

	mcpServer := hivemcp.NewServer(a.Controller, a.Validator, version)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}
