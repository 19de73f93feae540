package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
)

// RunBatches executes worker for every index in 0..total-1 with bounded
// parallelism: indexes are partitioned into sequential cohorts of at most
// size, workers within a cohort run concurrently, and a cohort starts only
// after the previous one has fully settled. Worker errors (and recovered
// panics) are collected per index and never abort sibling workers.
// afterBatch, when non-nil, runs after each cohort with cumulative progress.
//
// The returned error is non-nil only when the context is cancelled between
// cohorts; in-flight workers are always allowed to finish.
func RunBatches(ctx context.Context, total, size int, worker func(ctx context.Context, index int) error, afterBatch func(completed, total int)) ([]error, error) {
	errs := make([]error, total)
	if total == 0 {
		return errs, nil
	}
	if size <= 0 {
		size = 1
	}

	for start := 0; start < total; start += size {
		if err := ctx.Err(); err != nil {
			return errs, err
		}

		end := start + size
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						errs[i] = eris.Errorf("worker panic: %v", r)
					}
				}()
				errs[i] = worker(ctx, i)
			}(i)
		}
		wg.Wait()

		if afterBatch != nil {
			afterBatch(end, total)
		}
	}
	return errs, nil
}
