package common

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatchRunnerPreservesOrder(t *testing.T) {
	runner := NewBatchRunner[int, string](BatchRunnerConfig{MaxConcurrency: 4})

	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}
	batch := runner.Run(context.Background(), items, func(_ context.Context, item int) (string, error) {
		return "v" + strconv.Itoa(item), nil
	})

	if batch.TotalCount != 50 || batch.SuccessCount != 50 {
		t.Fatalf("counts = %d/%d, want 50/50", batch.TotalCount, batch.SuccessCount)
	}
	for i, r := range batch.Results {
		if r.Index != i || r.Result != "v"+strconv.Itoa(i) {
			t.Fatalf("result %d out of order: %+v", i, r)
		}
	}
}

func TestBatchRunnerConcurrencyLimit(t *testing.T) {
	const limit = 3
	runner := NewBatchRunner[int, int](BatchRunnerConfig{MaxConcurrency: limit})

	var current, peak int64
	var mu sync.Mutex

	items := make([]int, 20)
	runner.Run(context.Background(), items, func(_ context.Context, item int) (int, error) {
		n := atomic.AddInt64(&current, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return item, nil
	})

	if peak > limit {
		t.Errorf("peak concurrency %d exceeded limit %d", peak, limit)
	}
}

func TestBatchRunnerIsolatesFailures(t *testing.T) {
	runner := NewBatchRunner[int, int](BatchRunnerConfig{MaxConcurrency: 2})

	boom := errors.New("boom")
	batch := runner.Run(context.Background(), []int{0, 1, 2, 3}, func(_ context.Context, item int) (int, error) {
		if item%2 == 1 {
			return 0, boom
		}
		return item * 10, nil
	})

	if batch.SuccessCount != 2 || batch.FailureCount != 2 {
		t.Fatalf("counts = %d/%d, want 2/2", batch.SuccessCount, batch.FailureCount)
	}
	if batch.Results[1].Status != ItemStatusFailed || !errors.Is(batch.Results[1].Error, boom) {
		t.Errorf("result 1 = %+v", batch.Results[1])
	}
	if batch.Results[2].Status != ItemStatusSuccess || batch.Results[2].Result != 20 {
		t.Errorf("result 2 = %+v", batch.Results[2])
	}
}

func TestBatchRunnerCancelledContext(t *testing.T) {
	runner := NewBatchRunner[int, int](BatchRunnerConfig{MaxConcurrency: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := runner.Run(ctx, []int{0, 1, 2}, func(_ context.Context, item int) (int, error) {
		return item, nil
	})
	for i, r := range batch.Results {
		if r.Status != ItemStatusCancelled {
			t.Errorf("result %d status = %v, want CANCELLED", i, r.Status)
		}
	}
	if batch.FailureCount != 3 {
		t.Errorf("failure count = %d, want 3", batch.FailureCount)
	}
}

func TestBatchRunnerDefaultConcurrency(t *testing.T) {
	runner := NewBatchRunner[int, int](BatchRunnerConfig{})
	batch := runner.Run(context.Background(), []int{1}, func(_ context.Context, item int) (int, error) {
		return item, nil
	})
	if batch.SuccessCount != 1 {
		t.Errorf("success count = %d, want 1", batch.SuccessCount)
	}
}

func TestItemStatusString(t *testing.T) {
	cases := map[ItemStatus]string{
		ItemStatusSuccess:   "SUCCESS",
		ItemStatusFailed:    "FAILED",
		ItemStatusCancelled: "CANCELLED",
		ItemStatus(42):      "UNKNOWN(42)",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(status), got, want)
		}
	}
}
