package util

import (
	"fmt"
	"os"
	"time"

	"github.com/mxcd/go-config/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger from LOG_LEVEL and DEV.
// DEV switches to human-readable console output.
func InitLogger() error {
	level, err := zerolog.ParseLevel(config.Get().String("LOG_LEVEL"))
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	SetupLogger(level, config.Get().Bool("DEV"))
	return nil
}

// SetupLogger applies level and output format to the global logger.
func SetupLogger(level zerolog.Level, dev bool) {
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if dev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
