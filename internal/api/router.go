package api

import (
	"net/http"

	"github.com/alvinbaena/pwd-analyzer/pkg/analysis"
	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter builds the HTTP handler. Request bodies are never logged.
func NewRouter(service *analysis.Service, maxLength int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.SetLogger(logger.WithLogger(func(c *gin.Context, z zerolog.Logger) zerolog.Logger {
		return zerolog.New(gin.DefaultWriter).With().Timestamp().Logger()
	})))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	RegisterAnalyzeApi(v1, service, maxLength)

	return router
}
