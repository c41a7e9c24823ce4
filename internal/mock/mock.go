// Package mock implements a development orchestrator that serves the fetch
// contract from an in-memory store.
package mock

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mxcd/docgate/internal/model"
	"github.com/mxcd/docgate/internal/store"
	"github.com/mxcd/docgate/pkg/orchestrator"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 32 << 20

type Options struct {
	DevMode bool
	Port    int
	Store   *store.Store
	// APIKey protects the upload route when non-empty.
	APIKey  string
	FileTTL time.Duration
}

type Server struct {
	Options    *Options
	Engine     *gin.Engine
	HttpServer *http.Server
	Store      *store.Store
}

func NewServer(options *Options) (*Server, error) {
	if options == nil {
		return nil, fmt.Errorf("mock options cannot be nil")
	}
	if options.Store == nil {
		return nil, fmt.Errorf("mock options Store cannot be nil")
	}

	if !options.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		Options: options,
		Engine:  engine,
		Store:   options.Store,
		HttpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", options.Port),
			Handler: engine,
		},
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.Engine.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "files": s.Store.FileCount()})
	})
	s.Engine.POST(orchestrator.FetchPath, s.fetchHandler())

	upload := s.Engine.Group(orchestrator.UploadPath)
	if s.Options.APIKey != "" {
		upload.Use(apiKeyAuth(s.Options.APIKey))
	}
	upload.PUT("", s.uploadHandler())
}

func (s *Server) Run() error {
	log.Info().Str("addr", s.HttpServer.Addr).Msg("mock orchestrator listening")
	if err := s.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// fetchHandler resolves a serialized lookup request.
// POST /api/v1/files/fetch
//
// JSON files are wrapped in a {"content": "<base64>"} envelope so they are not
// mistaken for one; everything else is returned raw.
func (s *Server) fetchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
		if err != nil {
			jsonError(c, http.StatusBadRequest, "failed to read request body")
			return
		}
		lookup, err := model.ParseLookupRequest(body)
		if err != nil {
			jsonError(c, http.StatusBadRequest, err.Error())
			return
		}

		file, err := s.Store.GetFile(lookup.FileID())
		if err != nil {
			log.Error().Err(err).Str("fileid", lookup.FileID()).Msg("mock: failed to retrieve file")
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if file == nil {
			jsonError(c, http.StatusNotFound, "file not found or expired")
			return
		}

		if isJSON(file.ContentType) {
			c.JSON(http.StatusOK, gin.H{"content": base64.StdEncoding.EncodeToString(file.Data)})
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", file.Data)
	}
}

// uploadHandler stores a raw request body under a new file ID.
// PUT /api/v1/files
func (s *Server) uploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes+1))
		if err != nil {
			jsonError(c, http.StatusBadRequest, "failed to read request body")
			return
		}
		if len(data) > maxUploadBytes {
			jsonError(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}

		fileID := uuid.NewString()
		if err := s.Store.StoreFile(fileID, data, c.GetHeader("Content-Type"), s.Options.FileTTL); err != nil {
			log.Error().Err(err).Str("fileid", fileID).Msg("mock: failed to store file")
			jsonError(c, http.StatusInternalServerError, "failed to store file")
			return
		}

		log.Info().Str("fileid", fileID).Int("bytes", len(data)).Msg("mock: file stored")
		c.JSON(http.StatusCreated, gin.H{"fileid": fileID})
	}
}

// apiKeyAuth returns a Gin middleware that validates the X-API-Key header.
func apiKeyAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			jsonError(c, http.StatusUnauthorized, "missing API key")
			c.Abort()
			return
		}
		if key != expected {
			jsonError(c, http.StatusUnauthorized, "invalid API key")
			c.Abort()
			return
		}
		c.Next()
	}
}

func jsonError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
