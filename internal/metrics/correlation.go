package metrics

import (
	"github.com/san-kum/statmech/internal/sim"
	"github.com/san-kum/statmech/internal/stats"
)

// AutocorrTime is the integrated autocorrelation time of a series, in
// samples.
type AutocorrTime struct {
	series string
	corr   *stats.AutoCorrelator
}

func NewAutocorrTime(series string, depth int) *AutocorrTime {
	return &AutocorrTime{series: series, corr: stats.NewAutoCorrelator(depth)}
}

func (a *AutocorrTime) Name() string { return "tau_" + a.series }

func (a *AutocorrTime) Observe(s sim.Sample) {
	a.corr.Add(s.Value(a.series))
}

func (a *AutocorrTime) Value() float64 {
	return a.corr.IntegratedTime()
}

func (a *AutocorrTime) Reset() {
	a.corr.Reset()
}

// BlockError is the blocking estimate of the standard error of a series mean.
type BlockError struct {
	series string
	blocks int
	values []float64
}

func NewBlockError(series string, blocks int) *BlockError {
	return &BlockError{series: series, blocks: blocks}
}

func (b *BlockError) Name() string { return "err_" + b.series }

func (b *BlockError) Observe(s sim.Sample) {
	b.values = append(b.values, s.Value(b.series))
}

func (b *BlockError) Value() float64 {
	return stats.BlockError(b.values, b.blocks)
}

func (b *BlockError) Reset() {
	b.values = b.values[:0]
}
