package prometheus

import (
	"context"
	"strconv"
	"time"
)

// Default histogram buckets.
var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultEnhanceDurationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}
	DefaultBatchSizeBuckets       = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// AppMetrics bundles every metric the platform emits.
type AppMetrics struct {
	// HTTP surface
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestsActive  GaugeVec

	// Enhancement pipeline
	EnhancementsTotal    CounterVec
	EnhancementDuration  HistogramVec
	EnhancementTermCount HistogramVec
	BatchesTotal         CounterVec
	BatchSize            HistogramVec
	BatchDuration        HistogramVec

	// Cache
	CacheAccessTotal CounterVec
	CacheEntries     GaugeVec

	// Glossary
	GlossaryTerms      GaugeVec
	GlossaryLoadsTotal CounterVec

	// Messaging
	MessagesConsumedTotal  CounterVec
	MessagesProducedTotal  CounterVec
	MessageProcessDuration HistogramVec

	// Errors
	ErrorsTotal CounterVec
}

// NewAppMetrics registers every application metric against collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestsActive = collector.RegisterGauge("http_requests_active", "In-flight HTTP requests", "method")

	m.EnhancementsTotal = collector.RegisterCounter("enhancements_total", "SVO enhancements", "status")
	m.EnhancementDuration = collector.RegisterHistogram("enhancement_duration_seconds", "Single enhancement duration", DefaultEnhanceDurationBuckets)
	m.EnhancementTermCount = collector.RegisterHistogram("enhancement_term_count", "Glossary terms matched per enhancement", []float64{0, 1, 2, 5, 10, 25, 50})
	m.BatchesTotal = collector.RegisterCounter("batches_total", "Enhancement batches", "status")
	m.BatchSize = collector.RegisterHistogram("batch_size", "Tuples per batch", DefaultBatchSizeBuckets)
	m.BatchDuration = collector.RegisterHistogram("batch_duration_seconds", "Batch duration", DefaultHTTPDurationBuckets)

	m.CacheAccessTotal = collector.RegisterCounter("cache_access_total", "Cache lookups", "cache", "result")
	m.CacheEntries = collector.RegisterGauge("cache_entries", "Entries currently cached", "cache")

	m.GlossaryTerms = collector.RegisterGauge("glossary_terms", "Loaded glossary terms", "source")
	m.GlossaryLoadsTotal = collector.RegisterCounter("glossary_loads_total", "Glossary load attempts", "source", "status")

	m.MessagesConsumedTotal = collector.RegisterCounter("mq_consumed_total", "Messages consumed", "topic", "status")
	m.MessagesProducedTotal = collector.RegisterCounter("mq_produced_total", "Messages produced", "topic", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "topic")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheAccess records a cache hit or miss.
func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.CacheAccessTotal.WithLabelValues(cache, result).Inc()
}

// RecordError counts an error by component and code.
func RecordError(metrics *AppMetrics, component, code string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// EngineMetrics adapts AppMetrics to the inference engine's telemetry
// interface.
type EngineMetrics struct {
	app *AppMetrics
}

// NewEngineMetrics wraps app for injection into the engine.
func NewEngineMetrics(app *AppMetrics) *EngineMetrics {
	return &EngineMetrics{app: app}
}

// RecordEnhancement records one completed enhancement.
func (e *EngineMetrics) RecordEnhancement(_ context.Context, termCount int, durationMs float64) {
	if e.app == nil {
		return
	}
	e.app.EnhancementsTotal.WithLabelValues("ok").Inc()
	e.app.EnhancementDuration.WithLabelValues().Observe(durationMs / 1000.0)
	e.app.EnhancementTermCount.WithLabelValues().Observe(float64(termCount))
}

// RecordBatch records one completed batch.
func (e *EngineMetrics) RecordBatch(_ context.Context, size int, durationMs float64) {
	if e.app == nil {
		return
	}
	e.app.BatchesTotal.WithLabelValues("ok").Inc()
	e.app.BatchSize.WithLabelValues().Observe(float64(size))
	e.app.BatchDuration.WithLabelValues().Observe(durationMs / 1000.0)
}
