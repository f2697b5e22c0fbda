// Package stats holds the running accumulators and post-processing used by the
// engines: sums and sums of squares, autocorrelation, blocking errors and
// histograms.
//
// Every getter returns 0 when no samples have been added, so callers never see
// NaN from an empty accumulator.
package stats

// Accumulator keeps the running sum and sum of squares of a scalar.
type Accumulator struct {
	sum  float64
	sum2 float64
	n    int
}

func (a *Accumulator) Add(x float64) {
	a.sum += x
	a.sum2 += x * x
	a.n++
}

func (a *Accumulator) Count() int     { return a.n }
func (a *Accumulator) Sum() float64   { return a.sum }
func (a *Accumulator) SumSq() float64 { return a.sum2 }
func (a *Accumulator) Reset()         { *a = Accumulator{} }

// Mean returns sum/n, or 0 with no samples.
func (a *Accumulator) Mean() float64 {
	return a.sum / float64(denominator(a.n))
}

// MeanSq returns the mean of the squares.
func (a *Accumulator) MeanSq() float64 {
	return a.sum2 / float64(denominator(a.n))
}

// Variance is the population fluctuation <x^2> - <x>^2.
func (a *Accumulator) Variance() float64 {
	m := a.Mean()
	return a.MeanSq() - m*m
}

// denominator maps an empty count to 1 so empty averages read as zero.
func denominator(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
