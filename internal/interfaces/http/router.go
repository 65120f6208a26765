// Package http wires the gin route tree and HTTP server for the
// enhancement API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies
// required to build the route tree.
type RouterConfig struct {
	Mode string // gin mode: debug | release | test

	EnhanceHandler  *handlers.EnhanceHandler
	GlossaryHandler *handlers.GlossaryHandler
	HealthHandler   *handlers.HealthHandler

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the full route tree: public health probes, the
// metrics endpoint, and the versioned API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if cfg.EnhanceHandler != nil {
			api.POST("/enhance", cfg.EnhanceHandler.Enhance)
			api.POST("/enhance/batch", cfg.EnhanceHandler.EnhanceBatch)
			api.POST("/enhance/job", cfg.EnhanceHandler.EnhanceJob)
			api.POST("/results/export", cfg.EnhanceHandler.Export)
			api.POST("/results/summary", cfg.EnhanceHandler.Summarize)
		}
		if cfg.GlossaryHandler != nil {
			api.GET("/glossary/terms", cfg.GlossaryHandler.ListTerms)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "COMMON_003", "message": "route not found"})
	})

	return r
}
