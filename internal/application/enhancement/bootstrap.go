package enhancement

import (
	"context"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/config"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/common"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// LoadGlossary loads the botanical vocabulary from the configured source.
func LoadGlossary(ctx context.Context, cfg config.GlossaryConfig, repo glossary.Repository, metrics *prometheus.AppMetrics, log logging.Logger) (*glossary.Glossary, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	var (
		gls *glossary.Glossary
		err error
	)
	switch cfg.Source {
	case config.GlossarySourcePostgres:
		if repo == nil {
			return nil, errors.New(errors.ErrCodeGlossaryLoadFailed, "glossary repository is required for postgres source")
		}
		var terms []glossary.Term
		terms, err = repo.LoadTerms(ctx)
		if err == nil {
			gls, err = glossary.New(terms)
		}
	case config.GlossarySourceFile:
		gls, err = glossary.LoadFile(cfg.Path)
	default:
		return nil, errors.New(errors.ErrCodeGlossaryLoadFailed, "unknown glossary source "+string(cfg.Source))
	}

	source := string(cfg.Source)
	if err != nil {
		recordGlossaryLoad(metrics, source, false, 0)
		log.Error("glossary load failed", logging.String("source", source), logging.Err(err))
		return nil, err
	}

	recordGlossaryLoad(metrics, source, true, gls.Size())
	log.Info("glossary loaded",
		logging.String("source", source),
		logging.Int("terms", gls.Size()))
	return gls, nil
}

// BuildEngine assembles the inference engine with the configured cache
// layer. The cache parameter supplies the backing store when the redis
// backend is selected; it is ignored otherwise.
func BuildEngine(cfg config.EngineConfig, gls *glossary.Glossary, redisCache trait_inference.EnhancementCache, metrics *prometheus.AppMetrics, log logging.Logger) (trait_inference.Engine, error) {
	if gls == nil {
		return nil, errors.New(errors.ErrCodeGlossaryEmpty, "glossary is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	engine, err := trait_inference.NewEngine(
		gls,
		trait_inference.EngineConfig{MaxTextLength: cfg.MaxTextLength},
		prometheus.NewEngineMetrics(metrics),
		newEngineLogger(log.Named("engine")),
	)
	if err != nil {
		return nil, err
	}

	if !cfg.CacheEnabled {
		return engine, nil
	}

	var cache trait_inference.EnhancementCache
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		if redisCache == nil {
			return nil, errors.New(errors.ErrCodeCacheError, "redis cache backend selected but no cache supplied")
		}
		cache = redisCache
	default:
		cache = trait_inference.NewFIFOCache(cfg.CacheSize)
	}

	return trait_inference.NewCachedEngine(engine, cache), nil
}

// BatchRunnerConfig converts the batch section of the configuration
// into runner settings.
func BatchRunnerConfig(cfg config.BatchConfig) common.BatchRunnerConfig {
	return common.BatchRunnerConfig{
		MaxConcurrency: cfg.MaxConcurrency,
		ItemTimeout:    cfg.ItemTimeout,
	}
}

func recordGlossaryLoad(metrics *prometheus.AppMetrics, source string, ok bool, terms int) {
	if metrics == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	metrics.GlossaryLoadsTotal.WithLabelValues(source, status).Inc()
	if ok {
		metrics.GlossaryTerms.WithLabelValues(source).Set(float64(terms))
	}
}

// engineLogger adapts the structured logger to the engine's key/value
// telemetry interface.
type engineLogger struct {
	log logging.Logger
}

func newEngineLogger(log logging.Logger) *engineLogger {
	return &engineLogger{log: log}
}

func (l *engineLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, kvFields(keysAndValues)...)
}

func (l *engineLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn(msg, kvFields(keysAndValues)...)
}

func (l *engineLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, kvFields(keysAndValues)...)
}

func (l *engineLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, kvFields(keysAndValues)...)
}

func kvFields(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, logging.Any(key, kv[i+1]))
	}
	return fields
}
