package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

func TestRouterHealthEndpoints(t *testing.T) {
	router := NewRouter(RouterConfig{
		Mode: gin.TestMode,
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
			"glossary": func(ctx context.Context) error { return nil },
		}),
		Logger: logging.NewNopLogger(),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "glossary")
}

func TestRouterReadinessFailure(t *testing.T) {
	router := NewRouter(RouterConfig{
		Mode: gin.TestMode,
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
			"database": func(ctx context.Context) error {
				return errors.New(errors.ErrCodeDatabaseError, "connection refused")
			},
		}),
		Logger: logging.NewNopLogger(),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "phytotrait"}, logging.NewNopLogger())
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Mode:             gin.TestMode,
		MetricsCollector: collector,
		Logger:           logging.NewNopLogger(),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter(RouterConfig{Mode: gin.TestMode, Logger: logging.NewNopLogger()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_003")
}

func TestRouterSetsRequestID(t *testing.T) {
	router := NewRouter(RouterConfig{Mode: gin.TestMode, Logger: logging.NewNopLogger()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
}
