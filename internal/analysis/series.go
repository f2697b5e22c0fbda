package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/statmech/internal/stats"
)

// SeriesSummary describes one sampled observable.
type SeriesSummary struct {
	Name     string
	N        int
	Mean     float64
	StdDev   float64
	Min, Max float64
	NaiveErr float64
	BlockErr float64
	// Tau is the integrated autocorrelation time in samples.
	Tau float64
}

// Summarize reduces a series. blocks and depth configure the blocking error
// and the autocorrelation window.
func Summarize(name string, values []float64, blocks, depth int) SeriesSummary {
	s := SeriesSummary{Name: name, N: len(values)}
	if len(values) == 0 {
		return s
	}

	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	s.NaiveErr = stat.StdErr(s.StdDev, float64(len(values)))
	s.BlockErr = stats.BlockError(values, blocks)

	corr := stats.NewAutoCorrelator(depth)
	for _, v := range values {
		corr.Add(v)
	}
	s.Tau = corr.IntegratedTime()
	if math.IsNaN(s.Tau) {
		s.Tau = 0
	}
	return s
}
