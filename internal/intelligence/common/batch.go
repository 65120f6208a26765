// Package common holds generic helpers shared by the intelligence layer.
package common

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// ItemStatus enumeration
// ---------------------------------------------------------------------------

// ItemStatus represents the outcome status of a single batch item.
type ItemStatus int

const (
	ItemStatusSuccess   ItemStatus = iota // processing completed successfully
	ItemStatusFailed                      // processing failed with an error
	ItemStatusCancelled                   // processing was cancelled
)

// String returns the human-readable representation of an ItemStatus.
func (s ItemStatus) String() string {
	switch s {
	case ItemStatusSuccess:
		return "SUCCESS"
	case ItemStatusFailed:
		return "FAILED"
	case ItemStatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ---------------------------------------------------------------------------
// Generic types
// ---------------------------------------------------------------------------

// ProcessFunc is the signature for a function that processes a single item.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// ItemResult holds the outcome of processing a single item within a batch.
type ItemResult[R any] struct {
	Index      int        `json:"index"`
	Result     R          `json:"result"`
	Error      error      `json:"error,omitempty"`
	DurationMs float64    `json:"duration_ms"`
	Status     ItemStatus `json:"status"`
}

// BatchResult aggregates the outcomes of an entire batch processing run.
type BatchResult[R any] struct {
	Results           []*ItemResult[R] `json:"results"`
	TotalCount        int              `json:"total_count"`
	SuccessCount      int              `json:"success_count"`
	FailureCount      int              `json:"failure_count"`
	TotalDurationMs   float64          `json:"total_duration_ms"`
	AvgItemDurationMs float64          `json:"avg_item_duration_ms"`
}

// ---------------------------------------------------------------------------
// BatchRunner
// ---------------------------------------------------------------------------

// BatchRunnerConfig holds tuneable parameters for a BatchRunner.
type BatchRunnerConfig struct {
	// MaxConcurrency bounds the number of items processed in parallel.
	// Zero or negative falls back to GOMAXPROCS.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" mapstructure:"max_concurrency"`

	// ItemTimeout bounds the processing time of a single item.  Zero
	// disables the per-item timeout.
	ItemTimeout time.Duration `json:"item_timeout" yaml:"item_timeout" mapstructure:"item_timeout"`
}

// BatchRunner is a generic concurrency-bounded fan-out runner.  Items are
// processed independently; results come back in input order regardless of
// completion order.
type BatchRunner[T, R any] struct {
	config BatchRunnerConfig
	sem    chan struct{}
}

// NewBatchRunner constructs a runner with the given config.
func NewBatchRunner[T, R any](config BatchRunnerConfig) *BatchRunner[T, R] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = runtime.GOMAXPROCS(0)
	}
	return &BatchRunner[T, R]{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrency),
	}
}

// Run executes fn for every item, respecting the concurrency limit.  It
// never fails the batch as a whole: per-item errors land in the matching
// ItemResult, and a cancelled context marks the unstarted remainder
// cancelled rather than abandoning them.
func (b *BatchRunner[T, R]) Run(ctx context.Context, items []T, fn ProcessFunc[T, R]) *BatchResult[R] {
	start := time.Now()
	results := make([]*ItemResult[R], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			results[i] = &ItemResult[R]{Index: i, Error: err, Status: ItemStatusCancelled}
			continue
		}

		wg.Add(1)
		b.sem <- struct{}{}
		go func(index int, item T) {
			defer wg.Done()
			defer func() { <-b.sem }()
			results[index] = b.runOne(ctx, index, item, fn)
		}(i, item)
	}
	wg.Wait()

	batch := &BatchResult[R]{
		Results:         results,
		TotalCount:      len(items),
		TotalDurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}
	var itemDurations float64
	for _, r := range results {
		if r.Status == ItemStatusSuccess {
			batch.SuccessCount++
		} else {
			batch.FailureCount++
		}
		itemDurations += r.DurationMs
	}
	if len(items) > 0 {
		batch.AvgItemDurationMs = itemDurations / float64(len(items))
	}
	return batch
}

func (b *BatchRunner[T, R]) runOne(ctx context.Context, index int, item T, fn ProcessFunc[T, R]) *ItemResult[R] {
	itemCtx := ctx
	if b.config.ItemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, b.config.ItemTimeout)
		defer cancel()
	}

	itemStart := time.Now()
	result, err := fn(itemCtx, item)
	duration := float64(time.Since(itemStart).Microseconds()) / 1000.0

	status := ItemStatusSuccess
	if err != nil {
		status = ItemStatusFailed
		if ctx.Err() != nil || itemCtx.Err() != nil {
			status = ItemStatusCancelled
		}
	}
	return &ItemResult[R]{
		Index:      index,
		Result:     result,
		Error:      err,
		DurationMs: duration,
		Status:     status,
	}
}
