package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	collector, err := NewMetricsCollector(CollectorConfig{Namespace: "phytotrait"}, nil)
	require.NoError(t, err)
	return collector
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestRegisterCounterAndScrape(t *testing.T) {
	collector := newTestCollector(t)

	counter := collector.RegisterCounter("enhancements_total", "SVO enhancements", "status")
	counter.WithLabelValues("ok").Inc()
	counter.WithLabelValues("ok").Add(2)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "phytotrait_enhancements_total")
	assert.Contains(t, rec.Body.String(), `status="ok"`)
}

func TestRegisterIsIdempotent(t *testing.T) {
	collector := newTestCollector(t)

	first := collector.RegisterGauge("cache_entries", "Entries", "cache")
	second := collector.RegisterGauge("cache_entries", "Entries", "cache")

	first.WithLabelValues("memory").Set(5)
	second.WithLabelValues("memory").Inc()

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "phytotrait_cache_entries")
}

func TestRegisterConflictingTypeFallsBackToNoop(t *testing.T) {
	collector := newTestCollector(t)

	collector.RegisterCounter("dup_metric", "first registration")
	gauge := collector.RegisterGauge("dup_metric", "conflicting registration")

	// Must not panic; the conflicting registration degrades to a no-op.
	gauge.WithLabelValues().Set(1)
}

func TestHistogramObserve(t *testing.T) {
	collector := newTestCollector(t)

	histogram := collector.RegisterHistogram("enhancement_duration_seconds", "duration", nil)
	histogram.WithLabelValues().Observe(0.042)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "phytotrait_enhancement_duration_seconds_bucket")
}

func TestAppMetricsRegistersAndRecords(t *testing.T) {
	collector := newTestCollector(t)
	app := NewAppMetrics(collector)
	require.NotNil(t, app)

	RecordHTTPRequest(app, http.MethodPost, "/api/v1/enhance", http.StatusOK, 12*time.Millisecond)
	RecordCacheAccess(app, "memory", true)
	RecordCacheAccess(app, "memory", false)
	RecordError(app, "engine", "GLS_003")

	engine := NewEngineMetrics(app)
	engine.RecordEnhancement(context.Background(), 3, 1.5)
	engine.RecordBatch(context.Background(), 10, 20)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "phytotrait_http_requests_total")
	assert.Contains(t, body, "phytotrait_cache_access_total")
	assert.Contains(t, body, "phytotrait_batch_size")
}

func TestRecordHelpersTolerateNilMetrics(t *testing.T) {
	RecordHTTPRequest(nil, http.MethodGet, "/", 200, time.Millisecond)
	RecordCacheAccess(nil, "memory", true)
	RecordError(nil, "engine", "X")
	NewEngineMetrics(nil).RecordEnhancement(context.Background(), 1, 1)
}
