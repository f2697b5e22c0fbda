package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// AutoCorrelator estimates the normalised autocorrelation
//
//	C(t) = (<A(0)A(t)> - <A>^2) / (<A^2> - <A>^2)
//
// for lags 1..depth from a stream, keeping only the last depth values.
type AutoCorrelator struct {
	depth int
	saved []float64
	prod  []float64
	acc   Accumulator
}

func NewAutoCorrelator(depth int) *AutoCorrelator {
	if depth < 1 {
		depth = 1
	}
	return &AutoCorrelator{
		depth: depth,
		saved: make([]float64, depth),
		prod:  make([]float64, depth+1),
	}
}

func (c *AutoCorrelator) Add(a float64) {
	t := c.acc.Count()
	oldest := t % c.depth
	if t >= c.depth {
		// saved[oldest] is the value from depth steps ago
		idx := oldest
		for lag := c.depth; lag >= 1; lag-- {
			c.prod[lag] += a * c.saved[idx]
			idx = (idx + 1) % c.depth
		}
	}
	c.saved[oldest] = a
	c.acc.Add(a)
}

func (c *AutoCorrelator) Depth() int { return c.depth }

// Correlation returns C(1..depth). It returns nil until more than depth
// samples have been seen or when the series has no variance.
func (c *AutoCorrelator) Correlation() []float64 {
	n := c.acc.Count()
	if n <= c.depth {
		return nil
	}
	mean := c.acc.Mean()
	variance := c.acc.Variance()
	if variance <= 0 {
		return nil
	}
	norm := 1 / float64(n-c.depth)
	out := make([]float64, c.depth)
	for lag := 1; lag <= c.depth; lag++ {
		out[lag-1] = (c.prod[lag]*norm - mean*mean) / variance
	}
	return out
}

// IntegratedTime returns 1/2 + sum C(t), truncated at the first non-positive
// lag. Returns 0 when Correlation is undefined.
func (c *AutoCorrelator) IntegratedTime() float64 {
	corr := c.Correlation()
	if corr == nil {
		return 0
	}
	tau := 0.5
	for _, v := range corr {
		if v <= 0 {
			break
		}
		tau += v
	}
	return tau
}

func (c *AutoCorrelator) Reset() {
	for i := range c.saved {
		c.saved[i] = 0
	}
	for i := range c.prod {
		c.prod[i] = 0
	}
	c.acc.Reset()
}

// BlockError estimates the standard error of the mean of a correlated series
// by averaging it in blocks and treating block means as independent. Trailing
// samples that do not fill a block are dropped. Returns 0 with fewer than two
// blocks.
func BlockError(series []float64, blocks int) float64 {
	if blocks < 2 || len(series) < blocks {
		return 0
	}
	size := len(series) / blocks
	means := make([]float64, blocks)
	for b := 0; b < blocks; b++ {
		means[b] = stat.Mean(series[b*size:(b+1)*size], nil)
	}
	_, variance := stat.MeanVariance(means, nil)
	return stat.StdErr(math.Sqrt(variance), float64(blocks))
}
