package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/docgate/internal/gateway"
	"github.com/rs/zerolog/log"
)

const apiBasePath = "/api/v1"

type ServerOptions struct {
	DevMode bool
	Port    int
	Gateway *gateway.Gateway
}

type Server struct {
	Options    *ServerOptions
	Engine     *gin.Engine
	HttpServer *http.Server
	Gateway    *gateway.Gateway
}

func NewServer(options *ServerOptions) (*Server, error) {
	if options == nil {
		return nil, fmt.Errorf("server options cannot be nil")
	}
	if options.Gateway == nil {
		return nil, fmt.Errorf("server options Gateway cannot be nil")
	}

	server := &Server{
		Options: options,
		Gateway: options.Gateway,
	}

	if !server.Options.DevMode {
		log.Info().Msg("Running Gin in production mode")
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Info().Msg("Running Gin in development mode")
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	server.Engine = engine
	server.Engine.Use(gin.Recovery(), requestID(), accessLog())

	server.HttpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", options.Port),
		Handler: engine,
	}

	return server, nil
}

func (s *Server) RegisterRoutes() error {
	s.registerHealthRoute()
	s.registerVersionRoute()

	// Document route (anonymous)
	s.registerDocumentRoute()
	return nil
}

func (s *Server) Run() error {
	log.Info().Str("addr", s.HttpServer.Addr).Msg("server listening")
	if err := s.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.HttpServer.Shutdown(ctx)
}
