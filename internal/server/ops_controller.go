package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/docgate/internal/util"
)

func (s *Server) registerHealthRoute() {
	s.Engine.GET(apiBasePath+"/health", s.getHealthHandler())
}

func (s *Server) registerVersionRoute() {
	s.Engine.GET(apiBasePath+"/version", s.getVersionHandler())
}

// getHealthHandler reports liveness only; the orchestrator is not probed.
func (s *Server) getHealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"backend_timeout": s.Gateway.Timeout().String(),
		})
	}
}

func (s *Server) getVersionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": util.Version,
			"commit":  util.Commit,
		})
	}
}
