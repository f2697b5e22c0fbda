package metrics

import (
	"math"

	"github.com/san-kum/statmech/internal/sim"
)

// Drift is the largest relative departure of a conserved series from its
// first sample. The hard-disk kinetic temperature is the intended use.
type Drift struct {
	series   string
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewDrift(series string) *Drift {
	return &Drift{series: series}
}

func (d *Drift) Name() string { return "drift_" + d.series }

func (d *Drift) Observe(s sim.Sample) {
	v := s.Value(d.series)

	if d.samples == 0 {
		d.initial = v
	}

	d.current = v
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 {
	return d.maxDrift
}

func (d *Drift) Reset() {
	d.initial = 0
	d.current = 0
	d.maxDrift = 0
	d.samples = 0
}
