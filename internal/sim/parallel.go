package sim

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Factory builds a fresh engine for one ensemble member.
type Factory func(seed int64) (Engine, error)

// Ensemble runs independent copies of an engine, one goroutine per seed.
type Ensemble struct {
	factory   Factory
	metrics   func() []Metric
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a constructor for per-run metrics; metrics hold state and
// cannot be shared between goroutines.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			engine, err := e.factory(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			sim := New(engine)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					sim.AddMetric(m)
				}
			}
			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Aggregate returns the mean of a summary or metric value over runs and its
// standard error.
func Aggregate(results []*Result, name string) (mean, stderr float64) {
	xs := make([]float64, 0, len(results))
	for _, r := range results {
		if v, ok := r.Summary[name]; ok {
			xs = append(xs, v)
		} else if v, ok := r.Metrics[name]; ok {
			xs = append(xs, v)
		}
	}
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return mean, std / math.Sqrt(float64(len(xs)))
}
