// Package metrics reduces the sampled observables of a run to single numbers.
// Every metric follows one named series of the engine.
package metrics

import (
	"github.com/san-kum/statmech/internal/sim"
	"github.com/san-kum/statmech/internal/stats"
)

// Mean is the running average of a series.
type Mean struct {
	series string
	acc    stats.Accumulator
}

func NewMean(series string) *Mean {
	return &Mean{series: series}
}

func (m *Mean) Name() string         { return "mean_" + m.series }
func (m *Mean) Observe(s sim.Sample) { m.acc.Add(s.Value(m.series)) }
func (m *Mean) Value() float64       { return m.acc.Mean() }
func (m *Mean) Reset()               { m.acc.Reset() }

// Fluctuation is the variance <x²>-<x>² of a series.
type Fluctuation struct {
	series string
	acc    stats.Accumulator
}

func NewFluctuation(series string) *Fluctuation {
	return &Fluctuation{series: series}
}

func (f *Fluctuation) Name() string         { return "var_" + f.series }
func (f *Fluctuation) Observe(s sim.Sample) { f.acc.Add(s.Value(f.series)) }
func (f *Fluctuation) Value() float64       { return f.acc.Variance() }
func (f *Fluctuation) Reset()               { f.acc.Reset() }
