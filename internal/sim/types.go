package sim

// Engine is a Monte Carlo or event-driven system the runner can advance one
// step at a time. Observables are returned in the order named by Series.
type Engine interface {
	Name() string
	Series() []string
	Step() error
	Observables() []float64
	Summary() map[string]float64
	ResetData()
}

// Sink receives (x, y) points for one of the engine's series.
type Sink interface {
	Append(series int, x, y float64)
}

type Observer interface {
	OnSample(s Sample)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Sample is one row of observables taken after Step steps.
type Sample struct {
	Step   int
	Series []string
	Values []float64
}

// Value looks up an observable by series name. Unknown names read as zero.
func (s Sample) Value(name string) float64 {
	for i, n := range s.Series {
		if n == name && i < len(s.Values) {
			return s.Values[i]
		}
	}
	return 0
}

type Config struct {
	Steps       int
	Warmup      int
	SampleEvery int
}

type Result struct {
	Engine     string
	Series     []string
	Steps      []int
	Samples    [][]float64
	Summary    map[string]float64
	Metrics    map[string]float64
	StepsTaken int
}

// Column returns every sampled value of the named series, or nil.
func (r *Result) Column(name string) []float64 {
	idx := -1
	for i, n := range r.Series {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(r.Samples))
	for i, row := range r.Samples {
		out[i] = row[idx]
	}
	return out
}
