package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunBatchesAllSucceed(t *testing.T) {
	var calls int32
	errs, err := RunBatches(context.Background(), 5, 2, func(_ context.Context, _ int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run batches: %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected 5 worker calls, got %d", calls)
	}
	for i, e := range errs {
		if e != nil {
			t.Fatalf("index %d: unexpected error %v", i, e)
		}
	}
}

func TestRunBatchesBoundedConcurrency(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	_, err := RunBatches(context.Background(), 10, 3, func(_ context.Context, _ int) error {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run batches: %v", err)
	}
	if peak > 3 {
		t.Fatalf("expected at most 3 concurrent workers, saw %d", peak)
	}
}

func TestRunBatchesCollectsErrorsPerIndex(t *testing.T) {
	errs, err := RunBatches(context.Background(), 4, 2, func(_ context.Context, i int) error {
		if i%2 == 1 {
			return errStore
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run batches: %v", err)
	}
	for i, e := range errs {
		if i%2 == 1 && e == nil {
			t.Fatalf("index %d: expected error", i)
		}
		if i%2 == 0 && e != nil {
			t.Fatalf("index %d: unexpected error %v", i, e)
		}
	}
}

func TestRunBatchesRecoversPanic(t *testing.T) {
	errs, err := RunBatches(context.Background(), 3, 3, func(_ context.Context, i int) error {
		if i == 1 {
			panic("boom")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run batches: %v", err)
	}
	if errs[1] == nil || errs[0] != nil || errs[2] != nil {
		t.Fatalf("expected only index 1 to error, got %v", errs)
	}
}

func TestRunBatchesAfterBatchProgress(t *testing.T) {
	var progress [][2]int
	_, err := RunBatches(context.Background(), 7, 3, func(_ context.Context, _ int) error {
		return nil
	}, func(completed, total int) {
		progress = append(progress, [2]int{completed, total})
	})
	if err != nil {
		t.Fatalf("run batches: %v", err)
	}
	want := [][2]int{{3, 7}, {6, 7}, {7, 7}}
	if len(progress) != len(want) {
		t.Fatalf("expected %d progress calls, got %v", len(want), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("call %d: expected %v, got %v", i, want[i], progress[i])
		}
	}
}

func TestRunBatchesCancelledBetweenCohorts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int32
	_, err := RunBatches(ctx, 6, 2, func(_ context.Context, _ int) error {
		atomic.AddInt32(&calls, 1)
		cancel()
		return nil
	}, nil)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if calls != 2 {
		t.Fatalf("expected only first cohort to run, got %d calls", calls)
	}
}

func TestRunBatchesZeroTotal(t *testing.T) {
	errs, err := RunBatches(context.Background(), 0, 3, func(_ context.Context, _ int) error {
		t.Fatal("worker should not run")
		return nil
	}, func(_, _ int) {
		t.Fatal("afterBatch should not run")
	})
	if err != nil {
		t.Fatalf("run batches: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected empty error slice, got %v", errs)
	}
}

func TestRunBatchesZeroSizeFallsBackToOne(t *testing.T) {
	var order []int
	_, err := RunBatches(context.Background(), 3, 0, func(_ context.Context, i int) error {
		order = append(order, i)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run batches: %v", err)
	}
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected sequential execution, got %v", order)
	}
}
