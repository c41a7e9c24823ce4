package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/docgate/internal/gateway"
	"github.com/mxcd/docgate/internal/model"
	"github.com/rs/zerolog"
)

func (s *Server) registerDocumentRoute() {
	s.Engine.GET("/doc/:fileid", s.getDocumentHandler())
}

// getDocumentHandler returns the document retrieval handler.
// GET /doc/:fileid
//
// Returns:
//   - 200 with the document bytes, labelled with the request's own Content-Type
//   - 404 when the orchestrator does not know the file
//   - 502/504 when the orchestrator is unreachable or too slow
//   - 500 when the orchestrator answer is not a file payload
//
// Error responses carry no body.
func (s *Server) getDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fileID := c.Param("fileid")
		logger := zerolog.Ctx(c.Request.Context())
		logger.Info().Str("fileid", fileID).Str("client_ip", c.ClientIP()).Msg("document: processing request")

		req, err := model.Normalize(c.Request, fileID)
		if err != nil {
			logger.Error().Err(err).Str("fileid", fileID).Msg("document: failed to normalize request")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		payload, err := s.Gateway.Retrieve(c.Request.Context(), req.Serialized, req.Headers)
		if err != nil {
			status := statusForError(err)
			event := logger.Warn()
			if status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.Err(err).Str("fileid", fileID).Int("status", status).Msg("document: retrieval failed")
			c.AbortWithStatus(status)
			return
		}

		writeDocument(c, payload, req.Headers.ContentType())
	}
}

// statusForError maps a gateway error to the HTTP status returned to the caller.
func statusForError(err error) int {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, gateway.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDocument writes payload verbatim. An empty contentType leaves the
// header out entirely; net/http must not sniff a type in its place.
func writeDocument(c *gin.Context, payload []byte, contentType string) {
	header := c.Writer.Header()
	if contentType != "" {
		header.Set(model.HeaderContentType, contentType)
	} else {
		header[model.HeaderContentType] = nil
	}
	header.Set("Content-Length", strconv.Itoa(len(payload)))
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write(payload); err != nil {
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("document: client went away during write")
	}
}
