package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxcd/docgate/internal/gateway"
	"github.com/mxcd/docgate/internal/server"
	"github.com/mxcd/docgate/internal/util"
	"github.com/mxcd/go-config/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := util.InitConfig(); err != nil {
		log.Panic().Err(err).Msg("error initializing config")
	}
	config.Print()

	if err := util.InitLogger(); err != nil {
		log.Panic().Err(err).Msg("error initializing logger")
	}

	backendTimeout, err := time.ParseDuration(config.Get().String("BACKEND_TIMEOUT"))
	if err != nil {
		log.Panic().Err(err).Msg("error parsing BACKEND_TIMEOUT")
	}

	factory, err := gateway.NewOrchestratorFactory(gateway.OrchestratorOptions{
		BaseURL:          config.Get().String("ORCHESTRATOR_URL"),
		APIKey:           config.Get().String("ORCHESTRATOR_API_KEY"),
		MaxResponseBytes: int64(config.Get().Int("MAX_DOCUMENT_BYTES")),
		HTTPClient:       &http.Client{},
	})
	if err != nil {
		log.Panic().Err(err).Msg("error initializing orchestrator factory")
	}

	gw, err := gateway.New(factory, gateway.WithTimeout(backendTimeout))
	if err != nil {
		log.Panic().Err(err).Msg("error initializing gateway")
	}

	s, err := server.NewServer(&server.ServerOptions{
		DevMode: config.Get().Bool("DEV"),
		Port:    config.Get().Int("PORT"),
		Gateway: gw,
	})
	if err != nil {
		log.Panic().Err(err).Msg("error initializing server")
	}

	if err := s.RegisterRoutes(); err != nil {
		log.Panic().Err(err).Msg("error registering routes")
	}

	// Start server in a goroutine so we can listen for shutdown signals
	go func() {
		if err := s.Run(); err != nil {
			log.Panic().Err(err).Msg("error running server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server shutdown complete")
}
