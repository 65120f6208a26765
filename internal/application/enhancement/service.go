// Package enhancement provides the application-level service for SVO trait
// enhancement. This package serves as the interface between HTTP/CLI/worker
// entry points and the inference engine.
package enhancement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/common"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// Service defines the interface for enhancement application operations.
type Service interface {
	Enhance(ctx context.Context, input *EnhanceInput) (*trait_inference.EnhancedSVO, error)
	EnhanceBatch(ctx context.Context, input *BatchInput) (*BatchOutput, error)
	EnhanceJob(ctx context.Context, input *BatchInput) (*JobOutput, error)
	Export(results []*trait_inference.EnhancedSVO, format trait_inference.ExportFormat) ([]byte, error)
	Summarize(results []*trait_inference.EnhancedSVO) trait_inference.Summary
	GlossaryTerms(ctx context.Context) ([]glossary.Term, error)
}

// EnhanceInput contains input for a single enhancement.
type EnhanceInput struct {
	Tuple   svo.Tuple
	Context string
}

// BatchInput contains input for batch enhancement. Contexts is
// positional and may be shorter than Tuples.
type BatchInput struct {
	Tuples   []svo.Tuple
	Contexts []string
}

// BatchOutput is the result of a strict batch run: all tuples enhanced
// in input order, or an error describing the first failure.
type BatchOutput struct {
	JobID      string                         `json:"job_id"`
	Results    []*trait_inference.EnhancedSVO `json:"results"`
	DurationMs float64                        `json:"duration_ms"`
}

// JobItem is the outcome of one tuple within a concurrent job.
type JobItem struct {
	Index  int                          `json:"index"`
	Result *trait_inference.EnhancedSVO `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

// JobOutput is the result of a concurrent job run. Unlike BatchOutput,
// per-tuple failures are isolated so one bad tuple does not abort an
// asynchronous job.
type JobOutput struct {
	JobID        string    `json:"job_id"`
	Items        []JobItem `json:"items"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	DurationMs   float64   `json:"duration_ms"`
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	engine   trait_inference.Engine
	glossary *glossary.Glossary
	runner   *common.BatchRunner[int, *trait_inference.EnhancedSVO]
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// NewService creates a new enhancement application service. The engine
// must already carry whatever caching the deployment wants; metrics may
// be nil.
func NewService(engine trait_inference.Engine, gls *glossary.Glossary, batchCfg common.BatchRunnerConfig, metrics *prometheus.AppMetrics, logger logging.Logger) (Service, error) {
	if engine == nil {
		return nil, errors.New(errors.ErrCodeInternal, "enhancement engine is required")
	}
	if gls == nil {
		return nil, errors.New(errors.ErrCodeInternal, "glossary is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &serviceImpl{
		engine:   engine,
		glossary: gls,
		runner:   common.NewBatchRunner[int, *trait_inference.EnhancedSVO](batchCfg),
		metrics:  metrics,
		logger:   logger.Named("enhancement"),
	}, nil
}

func (s *serviceImpl) Enhance(ctx context.Context, input *EnhanceInput) (*trait_inference.EnhancedSVO, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "enhance input is required")
	}

	result, err := s.engine.Enhance(ctx, input.Tuple, input.Context)
	if err != nil {
		s.recordError(err)
		return nil, err
	}
	return result, nil
}

func (s *serviceImpl) EnhanceBatch(ctx context.Context, input *BatchInput) (*BatchOutput, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "batch input is required")
	}

	start := time.Now()
	results, err := s.engine.EnhanceBatch(ctx, input.Tuples, input.Contexts)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	elapsed := time.Since(start)
	s.logger.Info("batch enhanced",
		logging.Int("tuples", len(results)),
		logging.Duration("elapsed", elapsed))

	return &BatchOutput{
		JobID:      uuid.NewString(),
		Results:    results,
		DurationMs: float64(elapsed.Milliseconds()),
	}, nil
}

// EnhanceJob runs the batch through the concurrency-bounded runner.
// Results keep input order; failures are reported per item.
func (s *serviceImpl) EnhanceJob(ctx context.Context, input *BatchInput) (*JobOutput, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeBadRequest, "batch input is required")
	}
	if len(input.Tuples) == 0 {
		return nil, errors.New(errors.ErrCodeSVOEmptyBatch, "batch contains no tuples")
	}
	if len(input.Contexts) > len(input.Tuples) {
		return nil, errors.New(errors.ErrCodeSVOContextCount, "more contexts than tuples")
	}

	indexes := make([]int, len(input.Tuples))
	for i := range indexes {
		indexes[i] = i
	}

	batch := s.runner.Run(ctx, indexes, func(ctx context.Context, i int) (*trait_inference.EnhancedSVO, error) {
		contextText := ""
		if i < len(input.Contexts) {
			contextText = input.Contexts[i]
		}
		return s.engine.Enhance(ctx, input.Tuples[i], contextText)
	})

	out := &JobOutput{
		JobID:        uuid.NewString(),
		Items:        make([]JobItem, len(batch.Results)),
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		DurationMs:   batch.TotalDurationMs,
	}
	for i, item := range batch.Results {
		out.Items[i] = JobItem{Index: item.Index, Result: item.Result}
		if item.Error != nil {
			out.Items[i].Error = item.Error.Error()
			s.recordError(item.Error)
		}
	}

	s.recordBatch(batch.SuccessCount, time.Duration(batch.TotalDurationMs)*time.Millisecond)
	s.logger.Info("job enhanced",
		logging.String("job_id", out.JobID),
		logging.Int("succeeded", out.SuccessCount),
		logging.Int("failed", out.FailureCount))

	return out, nil
}

func (s *serviceImpl) Export(results []*trait_inference.EnhancedSVO, format trait_inference.ExportFormat) ([]byte, error) {
	data, err := trait_inference.Export(results, format)
	if err != nil {
		s.recordError(err)
		return nil, err
	}
	return data, nil
}

func (s *serviceImpl) Summarize(results []*trait_inference.EnhancedSVO) trait_inference.Summary {
	return trait_inference.Summarize(results)
}

func (s *serviceImpl) GlossaryTerms(ctx context.Context) ([]glossary.Term, error) {
	return s.glossary.Terms(), nil
}

func (s *serviceImpl) recordError(err error) {
	prometheus.RecordError(s.metrics, "enhancement", string(errors.GetCode(err)))
}

// recordBatch covers the concurrent job path. The strict batch path is
// already counted by the engine's own telemetry hook.
func (s *serviceImpl) recordBatch(size int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.BatchesTotal.WithLabelValues("ok").Inc()
	s.metrics.BatchSize.WithLabelValues().Observe(float64(size))
	s.metrics.BatchDuration.WithLabelValues().Observe(elapsed.Seconds())
}
