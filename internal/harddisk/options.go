package harddisk

import "github.com/charmbracelet/log"

type Option func(*Engine)

// WithLogger routes overlap diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOverlapCheck enables the O(N²) overlap scan after every collision.
func WithOverlapCheck(enabled bool) Option {
	return func(e *Engine) {
		e.checkOverlaps = enabled
	}
}

// WithHistogramBins sets the number of bins of the x-velocity histogram.
func WithHistogramBins(bins int) Option {
	return func(e *Engine) {
		if bins > 0 {
			e.histBins = bins
		}
	}
}
