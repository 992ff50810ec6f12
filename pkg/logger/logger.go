package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger for the given environment.
func Init(appEnv string) {
	log.Logger = zerolog.New(writerFor(appEnv, os.Stderr)).With().Timestamp().Logger()

	switch appEnv {
	case "production":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "test":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Add a hook to include the caller's file and line number
	log.Logger = log.With().Caller().Logger()
}

// writerFor returns human-readable console output everywhere except production.
func writerFor(appEnv string, out io.Writer) io.Writer {
	if appEnv == "production" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}
