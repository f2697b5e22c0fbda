package sim

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	engine    Engine
	metrics   []Metric
	observers []Observer
	sinks     []Sink
}

func New(engine Engine) *Simulator {
	return &Simulator{
		engine:    engine,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		sinks:     make([]Sink, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) AddSink(k Sink)         { s.sinks = append(s.sinks, k) }
func (s *Simulator) Engine() Engine         { return s.engine }

// Run performs cfg.Warmup unrecorded steps, clears the engine's averages and
// then cfg.Steps sampled steps. The context is checked between steps; on
// cancellation the partial result is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	series := s.engine.Series()
	result := &Result{
		Engine:  s.engine.Name(),
		Series:  series,
		Steps:   make([]int, 0, cfg.Steps/cfg.SampleEvery),
		Samples: make([][]float64, 0, cfg.Steps/cfg.SampleEvery),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Warmup; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		if err := s.engine.Step(); err != nil {
			return result, &SimulationError{Engine: result.Engine, Step: i, Wrapped: err}
		}
	}
	s.engine.ResetData()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		if err := s.engine.Step(); err != nil {
			s.finish(result)
			return result, &SimulationError{Engine: result.Engine, Step: cfg.Warmup + i, Wrapped: err}
		}
		result.StepsTaken++

		if (i+1)%cfg.SampleEvery != 0 {
			continue
		}
		values := s.engine.Observables()
		if err := checkSample(series, values); err != nil {
			s.finish(result)
			return result, &SimulationError{Engine: result.Engine, Step: cfg.Warmup + i, Wrapped: err}
		}

		sample := Sample{Step: i + 1, Series: series, Values: values}
		result.Steps = append(result.Steps, sample.Step)
		result.Samples = append(result.Samples, values)

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnSample(sample)
		}
		for _, k := range s.sinks {
			for j, v := range values {
				k.Append(j, float64(sample.Step), v)
			}
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.Summary = s.engine.Summary()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Warmup < 0 {
		return fmt.Errorf("%w: warmup must not be negative, got %d", ErrInvalidConfig, cfg.Warmup)
	}
	if cfg.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample interval must be positive, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

func checkSample(series []string, values []float64) error {
	if len(values) != len(series) {
		return fmt.Errorf("%w: %d values for %d series", ErrSeriesMismatch, len(values), len(series))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s", ErrInvalidSample, series[i])
		}
	}
	return nil
}

// RunWithCallback steps the engine until the callback returns false or the
// context ends, handing it a sample after every step. No averages are reset.
func (s *Simulator) RunWithCallback(ctx context.Context, callback func(Sample) bool) error {
	series := s.engine.Series()
	for step := 1; ; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.engine.Step(); err != nil {
			return &SimulationError{Engine: s.engine.Name(), Step: step, Wrapped: err}
		}
		if !callback(Sample{Step: step, Series: series, Values: s.engine.Observables()}) {
			return nil
		}
	}
}
