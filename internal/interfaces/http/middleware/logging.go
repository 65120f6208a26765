// Package middleware provides gin middleware shared by the HTTP surface.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a correlation id to every request, honoring one
// supplied by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// Logging emits one structured access log line per request and feeds
// the HTTP metrics.
func Logging(log logging.Logger, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("http")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()

		prometheus.RecordHTTPRequest(metrics, c.Request.Method, path, status, elapsed)

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
			logging.String("request_id", c.GetString("request_id")),
		}
		if status >= 500 {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request served", fields...)
	}
}
