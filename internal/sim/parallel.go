package sim

import (
	"context"
	"sync"
)

// SweepResult pairs a swept amplitude with its final excited population.
type SweepResult struct {
	Amp        float64
	Population float64
}

// ParallelSweep evaluates the final population for each amplitude
// concurrently. Each goroutine builds its own model, so runs share
// nothing beyond the read-only evaluator config.
func ParallelSweep(ctx context.Context, e *Evaluator, width float64, amps []float64) ([]SweepResult, error) {
	results := make([]SweepResult, len(amps))
	errs := make([]error, len(amps))

	var wg sync.WaitGroup
	for i, amp := range amps {
		wg.Add(1)
		go func(idx int, a float64) {
			defer wg.Done()

			pop, err := e.Population(ctx, PulseParams{Amp: a, Width: width})
			results[idx] = SweepResult{Amp: a, Population: pop}
			errs[idx] = err
		}(i, amp)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
