package stats

import "go-hep.org/x/hep/hbook"

// Histogram is a fixed-range one-dimensional histogram. Values outside the
// range go to hbook's under/overflow and still count in Entries.
type Histogram struct {
	bins int
	min  float64
	max  float64
	h    *hbook.H1D
}

// Bin is one histogram bin.
type Bin struct {
	Low, High float64
	Count     float64
}

func NewHistogram(bins int, min, max float64) *Histogram {
	if bins < 1 {
		bins = 1
	}
	if max <= min {
		max = min + 1
	}
	return &Histogram{
		bins: bins,
		min:  min,
		max:  max,
		h:    hbook.NewH1D(bins, min, max),
	}
}

func (h *Histogram) Fill(x float64) { h.h.Fill(x, 1) }

func (h *Histogram) Entries() int64 { return h.h.Entries() }

// Mean returns the mean of the filled values, 0 when empty.
func (h *Histogram) Mean() float64 {
	if h.h.Entries() == 0 {
		return 0
	}
	return h.h.XMean()
}

// StdDev returns the standard deviation of the filled values, 0 with fewer
// than two entries.
func (h *Histogram) StdDev() float64 {
	if h.h.Entries() < 2 {
		return 0
	}
	return h.h.XStdDev()
}

// Bins returns the in-range bins.
func (h *Histogram) Bins() []Bin {
	src := h.h.Binning.Bins
	out := make([]Bin, len(src))
	for i, b := range src {
		out[i] = Bin{Low: b.XMin(), High: b.XMax(), Count: b.SumW()}
	}
	return out
}

// Reset discards every entry and keeps the binning.
func (h *Histogram) Reset() {
	h.h = hbook.NewH1D(h.bins, h.min, h.max)
}
