package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heilmeiera/time-discrete-race-simulator/log"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/racesim"
	"github.com/heilmeiera/time-discrete-race-simulator/pkg/simpars"
)

// BatchRun is the outcome of one race within a batch.
type BatchRun struct {
	RunID    uuid.UUID
	Result   *racesim.Result
	WallTime time.Duration
}

// RunBatch simulates the given number of races with at most maxConcurrency
// workers and returns the runs in submission order. The first error aborts
// the remaining runs.
//
//nolint:gocognit // worker pool wiring
func RunBatch(
	ctx context.Context,
	pars *simpars.SimPars,
	timestepSize float64,
	runs, maxConcurrency int,
) ([]BatchRun, error) {
	if runs < 1 {
		return nil, fmt.Errorf("number of runs must be at least 1, got %d", runs)
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	logger := log.Default().Named("batch")
	logger.Info("starting batch",
		log.Int("runs", runs),
		log.Int("workers", maxConcurrency))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]BatchRun, runs)
	jobs := make(chan int)
	errs := make(chan error, runs)

	var wg sync.WaitGroup
	for w := 0; w < maxConcurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				run, err := runOnce(ctx, pars, timestepSize)
				if err != nil {
					errs <- fmt.Errorf("run %d: %w", idx+1, err)
					cancel()
					return
				}
				out[idx] = run
			}
		}()
	}

	for idx := 0; idx < runs; idx++ {
		select {
		case <-ctx.Done():
			idx = runs // stop submitting
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func runOnce(
	ctx context.Context,
	pars *simpars.SimPars,
	timestepSize float64,
) (BatchRun, error) {
	race, err := racesim.NewRace(pars, timestepSize)
	if err != nil {
		return BatchRun{}, err
	}

	start := time.Now()
	result, err := NewRunner(race).Run(ctx)
	if err != nil {
		return BatchRun{}, err
	}
	return BatchRun{
		RunID:    uuid.New(),
		Result:   result,
		WallTime: time.Since(start),
	}, nil
}
