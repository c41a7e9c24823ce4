// Command mock runs a development orchestrator that serves the fetch contract
// from memory, seeded with a sample PDF and QR code.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxcd/docgate/internal/mock"
	"github.com/mxcd/docgate/internal/store"
	"github.com/mxcd/docgate/internal/util"
	"github.com/mxcd/go-config/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := util.InitMockConfig(); err != nil {
		log.Panic().Err(err).Msg("error initializing config")
	}
	config.Print()

	if err := util.InitLogger(); err != nil {
		log.Panic().Err(err).Msg("error initializing logger")
	}

	fileTTL, err := time.ParseDuration(config.Get().String("FILE_TTL"))
	if err != nil {
		log.Panic().Err(err).Msg("error parsing FILE_TTL")
	}

	fileStore := store.NewStore(fileTTL)
	if err := mock.Seed(fileStore, config.Get().String("PUBLIC_BASE_URL"), 0); err != nil {
		log.Panic().Err(err).Msg("error seeding sample files")
	}

	s, err := mock.NewServer(&mock.Options{
		DevMode: config.Get().Bool("DEV"),
		Port:    config.Get().Int("MOCK_PORT"),
		Store:   fileStore,
		APIKey:  config.Get().String("MOCK_API_KEY"),
		FileTTL: fileTTL,
	})
	if err != nil {
		log.Panic().Err(err).Msg("error initializing mock server")
	}

	go func() {
		if err := s.Run(); err != nil {
			log.Panic().Err(err).Msg("error running mock server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.HttpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("mock orchestrator stopped")
}
