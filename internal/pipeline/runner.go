package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when a trip already has an in-flight run.
var ErrAlreadyRunning = errors.New("trip is already being processed")

// Runner guards the single-in-flight-run-per-trip invariant and runs the
// pipeline on a background goroutine.
type Runner struct {
	pipeline *Pipeline
	mu       sync.Mutex
	running  map[string]struct{}
	wg       sync.WaitGroup
}

func NewRunner(p *Pipeline) *Runner {
	return &Runner{
		pipeline: p,
		running:  map[string]struct{}{},
	}
}

// Start launches a pipeline run for the trip. The run owns its own context:
// it is not tied to the HTTP request that triggered it.
func (r *Runner) Start(tripID string) error {
	r.mu.Lock()
	if _, ok := r.running[tripID]; ok {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running[tripID] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(tripID)
		if err := r.pipeline.Run(context.Background(), tripID); err != nil {
			zap.L().Error("pipeline run failed", zap.String("trip_id", tripID), zap.Error(err))
		}
	}()
	return nil
}

// Running reports whether the trip has an in-flight run.
func (r *Runner) Running(tripID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[tripID]
	return ok
}

// Wait blocks until all in-flight runs finish.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) release(tripID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, tripID)
}
