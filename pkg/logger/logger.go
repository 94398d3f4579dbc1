// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/config"
)

// Init points log.Logger at the configured stream. Output defaults to stderr,
// which the MCP binary relies on: stdout is its transport.
func Init(cfg config.LogConfig) error {
	var out io.Writer = os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}
	return initWriter(cfg, out)
}

func initWriter(cfg config.LogConfig, out io.Writer) error {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zerolog.ParseLevel(cfg.Level); err != nil {
			return err
		}
	}

	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return nil
}
