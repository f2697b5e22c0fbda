package sim

import (
	"context"
	"errors"
	"math"
	"testing"
)

type testEngine struct {
	seed   int64
	steps  int
	resets int
	failAt int
	nanAt  int
	sum    float64
}

func (t *testEngine) Name() string     { return "counter" }
func (t *testEngine) Series() []string { return []string{"step", "seed"} }

func (t *testEngine) Step() error {
	t.steps++
	if t.failAt > 0 && t.steps == t.failAt {
		return errors.New("boom")
	}
	t.sum += float64(t.steps)
	return nil
}

func (t *testEngine) Observables() []float64 {
	if t.nanAt > 0 && t.steps >= t.nanAt {
		return []float64{math.NaN(), float64(t.seed)}
	}
	return []float64{float64(t.steps), float64(t.seed)}
}

func (t *testEngine) Summary() map[string]float64 {
	return map[string]float64{"seed": float64(t.seed), "sum": t.sum}
}

func (t *testEngine) ResetData() {
	t.resets++
	t.sum = 0
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s Sample) {
	t.count++
	t.sum += s.Value("step")
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type recordingSink struct {
	points map[int][][2]float64
}

func (r *recordingSink) Append(series int, x, y float64) {
	if r.points == nil {
		r.points = make(map[int][][2]float64)
	}
	r.points[series] = append(r.points[series], [2]float64{x, y})
}

func TestSimulatorRun(t *testing.T) {
	eng := &testEngine{}
	sim := New(eng)

	result, err := sim.Run(context.Background(), Config{Steps: 10, Warmup: 5, SampleEvery: 2})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if eng.resets != 1 {
		t.Errorf("expected one reset after warmup, got %d", eng.resets)
	}
	if eng.steps != 15 {
		t.Errorf("expected 15 engine steps, got %d", eng.steps)
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 sampled steps, got %d", result.StepsTaken)
	}
	if len(result.Samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(result.Samples))
	}
	if result.Steps[0] != 2 || result.Steps[4] != 10 {
		t.Errorf("unexpected sample steps %v", result.Steps)
	}

	// warmup steps are excluded from the summary
	want := 0.0
	for k := 6; k <= 15; k++ {
		want += float64(k)
	}
	if result.Summary["sum"] != want {
		t.Errorf("expected sum %f, got %f", want, result.Summary["sum"])
	}

	col := result.Column("step")
	if len(col) != 5 || col[0] != 7 || col[4] != 15 {
		t.Errorf("unexpected column %v", col)
	}
	if result.Column("missing") != nil {
		t.Error("expected nil column for unknown series")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&testEngine{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero steps", Config{Steps: 0, SampleEvery: 1}},
		{"negative warmup", Config{Steps: 10, Warmup: -1, SampleEvery: 1}},
		{"zero interval", Config{Steps: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorMetricsAndSinks(t *testing.T) {
	sim := New(&testEngine{})

	metric := &testMetric{}
	sink := &recordingSink{}
	sim.AddMetric(metric)
	sim.AddSink(sink)

	result, err := sim.Run(context.Background(), Config{Steps: 4, SampleEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if metric.count != 4 {
		t.Errorf("expected 4 observations, got %d", metric.count)
	}
	if got := result.Metrics["test"]; got != 2.5 {
		t.Errorf("expected metric 2.5, got %f", got)
	}
	if len(sink.points[0]) != 4 || len(sink.points[1]) != 4 {
		t.Errorf("expected 4 points per series, got %v", sink.points)
	}
	if sink.points[0][3] != [2]float64{4, 4} {
		t.Errorf("unexpected last point %v", sink.points[0][3])
	}
}

func TestSimulatorErrors(t *testing.T) {
	_, err := New(&testEngine{failAt: 3}).Run(context.Background(), Config{Steps: 10, SampleEvery: 1})
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Step != 2 {
		t.Errorf("expected failure at step 2, got %d", simErr.Step)
	}

	_, err = New(&testEngine{nanAt: 2}).Run(context.Background(), Config{Steps: 10, SampleEvery: 1})
	if !errors.Is(err, ErrInvalidSample) {
		t.Errorf("expected ErrInvalidSample, got %v", err)
	}
}

func TestSimulatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(&testEngine{}).Run(ctx, Config{Steps: 10, SampleEvery: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected an empty partial result, got %+v", result)
	}
}

func TestRunWithCallback(t *testing.T) {
	eng := &testEngine{}
	calls := 0
	err := New(eng).RunWithCallback(context.Background(), func(s Sample) bool {
		calls++
		return s.Value("step") < 7
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 7 || eng.steps != 7 {
		t.Errorf("expected 7 steps, got %d calls and %d steps", calls, eng.steps)
	}
}

func TestEnsemble(t *testing.T) {
	factory := func(seed int64) (Engine, error) { return &testEngine{seed: seed}, nil }
	results, err := NewEnsemble(factory, 4, 10).
		WithMetrics(func() []Metric { return []Metric{&testMetric{}} }).
		Run(context.Background(), Config{Steps: 3, SampleEvery: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Summary["seed"] != float64(10+i) {
			t.Errorf("run %d: expected seed %d, got %f", i, 10+i, r.Summary["seed"])
		}
		if r.Metrics["test"] != 2 {
			t.Errorf("run %d: expected metric 2, got %f", i, r.Metrics["test"])
		}
	}

	mean, stderr := Aggregate(results, "seed")
	if mean != 11.5 {
		t.Errorf("expected mean seed 11.5, got %f", mean)
	}
	// sample std of 10..13 is sqrt(5/3)
	if math.Abs(stderr-math.Sqrt(5.0/3)/2) > 1e-12 {
		t.Errorf("unexpected standard error %f", stderr)
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	factory := func(seed int64) (Engine, error) {
		if seed == 2 {
			return nil, errors.New("bad seed")
		}
		return &testEngine{seed: seed}, nil
	}
	if _, err := NewEnsemble(factory, 3, 0).Run(context.Background(), Config{Steps: 1, SampleEvery: 1}); err == nil {
		t.Error("expected factory error")
	}
}
