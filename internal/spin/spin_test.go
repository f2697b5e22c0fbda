package spin

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/statmech/internal/lattice"
)

func mustNew(t *testing.T, p Params) *Model {
	t.Helper()
	m, err := New(p)
	if err != nil {
		t.Fatalf("New(%+v): %v", p, err)
	}
	return m
}

func checkInvariants(t *testing.T, m *Model, step int) {
	t.Helper()
	if got, want := m.Energy(), m.RecomputeEnergy(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("step %d: expected E=%f, got %f", step, want, got)
	}
	if got, want := m.Magnetization(), m.RecomputeMagnetization(); got != want {
		t.Fatalf("step %d: expected M=%d, got %d", step, want, got)
	}
	if got, want := m.StaggeredMagnetization(), m.recomputeStaggered(); got != want {
		t.Fatalf("step %d: expected staggered M=%d, got %d", step, want, got)
	}
}

func TestMetropolisKeepsEnergyConsistent(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"ising 2x2", Params{Lx: 2, Ly: 2, Topology: lattice.Square, Q: 2, J: 1, T: 2.0, Seed: 1}},
		{"ising field", Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, H: 0.3, T: 2.5, Seed: 2}},
		{"antiferro square", Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: -1, T: 1.5, Seed: 3}},
		{"triangular antiferro", Params{Lx: 6, Ly: 6, Topology: lattice.Triangular, Q: 2, J: -1, T: 1.0, Seed: 4}},
		{"chain", Params{Lx: 16, Ly: 1, Topology: lattice.Chain, Q: 2, J: 1, T: 1.0, Seed: 5}},
		{"chain of two", Params{Lx: 2, Ly: 1, Topology: lattice.Chain, Q: 2, J: 1, T: 5, Seed: 8}},
		{"potts chain of two", Params{Lx: 2, Ly: 1, Topology: lattice.Chain, Q: 3, J: 1, T: 5, Seed: 9}},
		{"triangular 2x2", Params{Lx: 2, Ly: 2, Topology: lattice.Triangular, Q: 2, J: -1, T: 5, Seed: 10}},
		{"potts q3", Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 3, J: 1, T: 1.0, Seed: 6}},
		{"potts q8", Params{Lx: 5, Ly: 5, Topology: lattice.Square, Q: 8, J: 1, T: 0.7, Seed: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustNew(t, tt.p)
			checkInvariants(t, m, 0)
			for step := 1; step <= 200; step++ {
				m.Step()
				checkInvariants(t, m, step)
			}
			if m.MCS() != 200 {
				t.Errorf("expected 200 sweeps, got %d", m.MCS())
			}
		})
	}
}

func TestWolffKeepsEnergyConsistent(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"ising square", Params{Lx: 8, Ly: 8, Topology: lattice.Square, Q: 2, J: 1, T: 2.269, Seed: 11}},
		{"ising triangular", Params{Lx: 6, Ly: 6, Topology: lattice.Triangular, Q: 2, J: 1, T: 3.6, Seed: 12}},
		{"ising chain", Params{Lx: 20, Ly: 1, Topology: lattice.Chain, Q: 2, J: 1, T: 0.8, Seed: 13}},
		{"chain of two", Params{Lx: 2, Ly: 1, Topology: lattice.Chain, Q: 2, J: 1, T: 5, Seed: 16}},
		{"potts q3", Params{Lx: 8, Ly: 8, Topology: lattice.Square, Q: 3, J: 1, T: 1.0, Seed: 14}},
		{"potts q8", Params{Lx: 6, Ly: 6, Topology: lattice.Square, Q: 8, J: 1, T: 0.75, Seed: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustNew(t, tt.p)
			m.Randomize()
			for step := 1; step <= 300; step++ {
				size, err := m.WolffStep()
				if err != nil {
					t.Fatalf("step %d: %v", step, err)
				}
				if size < 1 || size > m.N() {
					t.Fatalf("step %d: cluster size %d out of range", step, size)
				}
				checkInvariants(t, m, step)
			}
		})
	}
}

func TestWolffPreconditions(t *testing.T) {
	ferro := Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 3, J: 1, T: 1}
	if err := ferro.ValidateWolff(); err != nil {
		t.Errorf("expected ferromagnet to allow Wolff moves, got %v", err)
	}

	anti := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: -1, T: 1})
	if _, err := anti.WolffStep(); !errors.Is(err, ErrWolffAntiferro) {
		t.Errorf("expected ErrWolffAntiferro, got %v", err)
	}

	field := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, H: 0.5, T: 1})
	if _, err := field.WolffStep(); !errors.Is(err, ErrWolffField) {
		t.Errorf("expected ErrWolffField, got %v", err)
	}

	// a field switched on after construction is caught by the move itself
	ising := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, T: 1})
	if err := ising.SetField(0.2); err != nil {
		t.Fatal(err)
	}
	if _, err := ising.WolffStep(); !errors.Is(err, ErrWolffField) {
		t.Errorf("expected ErrWolffField after SetField, got %v", err)
	}
}

func TestHighTemperatureAcceptsAlmostEverything(t *testing.T) {
	m := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, T: 100, Seed: 42})
	for i := 0; i < 1000; i++ {
		m.Step()
	}
	if r := m.AcceptanceRatio(); r <= 0.95 {
		t.Errorf("expected acceptance near 1 at T=100, got %f", r)
	}
}

func TestZeroTemperatureIsClamped(t *testing.T) {
	m := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, T: 1, Seed: 1})
	if err := m.SetTemperature(0); err != nil {
		t.Fatalf("SetTemperature(0): %v", err)
	}
	if m.Temperature() != MinTemperature {
		t.Errorf("expected T clamped to %g, got %g", MinTemperature, m.Temperature())
	}

	// from the ground state every single flip costs 8J
	for i := 0; i < 50; i++ {
		m.Step()
	}
	if m.AcceptanceRatio() != 0 {
		t.Errorf("expected no accepted flips, got ratio %f", m.AcceptanceRatio())
	}
	if m.Energy() != -32 {
		t.Errorf("expected ground state energy -32, got %f", m.Energy())
	}
	if math.IsNaN(m.SpecificHeat()) || math.IsInf(m.SpecificHeat(), 0) {
		t.Errorf("expected finite specific heat, got %f", m.SpecificHeat())
	}
}

func TestCriticalEnergyPerSpin(t *testing.T) {
	p := Params{Lx: 16, Ly: 16, Topology: lattice.Square, Q: 2, J: 1, Seed: 2024}
	p.T = CriticalTemperature(p)
	m := mustNew(t, p)

	for i := 0; i < 500; i++ {
		if _, err := m.WolffStep(); err != nil {
			t.Fatal(err)
		}
	}
	m.ResetData()
	for i := 0; i < 4000; i++ {
		if _, err := m.WolffStep(); err != nil {
			t.Fatal(err)
		}
	}

	perSpin := m.MeanEnergy() / float64(m.N())
	if math.Abs(perSpin+math.Sqrt2) > 0.1 {
		t.Errorf("expected energy per spin near %f, got %f", -math.Sqrt2, perSpin)
	}
	if m.SpecificHeat() <= 0 {
		t.Errorf("expected positive specific heat at Tc, got %f", m.SpecificHeat())
	}
}

func TestSameSeedSameTrajectory(t *testing.T) {
	p := Params{Lx: 6, Ly: 6, Topology: lattice.Square, Q: 3, J: 1, T: 1.2, Seed: 99}
	a := mustNew(t, p)
	b := mustNew(t, p)

	for i := 0; i < 40; i++ {
		a.Step()
		b.Step()
		if _, err := a.WolffStep(); err != nil {
			t.Fatal(err)
		}
		if _, err := b.WolffStep(); err != nil {
			t.Fatal(err)
		}
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("site %d: trajectories diverged (%d vs %d)", i, sa[i], sb[i])
		}
	}
	if a.MeanEnergy() != b.MeanEnergy() {
		t.Errorf("expected identical mean energy, got %f and %f", a.MeanEnergy(), b.MeanEnergy())
	}
}

func TestSetFieldShiftsEnergy(t *testing.T) {
	m := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, T: 2, Seed: 3})
	m.Randomize()
	for _, h := range []float64{0.5, -0.25, 0} {
		if err := m.SetField(h); err != nil {
			t.Fatalf("SetField(%f): %v", h, err)
		}
		checkInvariants(t, m, 0)
	}

	potts := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 4, J: 1, T: 1})
	if err := potts.SetField(1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for Potts field, got %v", err)
	}
}

func TestOrderedObservables(t *testing.T) {
	ising := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, T: 1})
	if ising.OrderParameter() != 16 {
		t.Errorf("expected M=16, got %f", ising.OrderParameter())
	}
	if ising.StaggeredMagnetization() != 8 {
		t.Errorf("expected staggered M=8, got %d", ising.StaggeredMagnetization())
	}

	potts := mustNew(t, Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 5, J: 1, T: 1})
	if potts.OrderParameter() != 1 {
		t.Errorf("expected Potts order 1, got %f", potts.OrderParameter())
	}
	if potts.Energy() != -32 {
		t.Errorf("expected Potts ground energy -32, got %f", potts.Energy())
	}
}

func TestEmptyAccumulatorsReadZero(t *testing.T) {
	m := mustNew(t, Params{Lx: 3, Ly: 3, Topology: lattice.Square, Q: 2, J: 1, T: 2})
	if m.AcceptanceRatio() != 0 || m.SpecificHeat() != 0 || m.Susceptibility() != 0 {
		t.Error("expected zero derived quantities before any step")
	}
}

func TestInvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		field string
	}{
		{"zero width", Params{Lx: 0, Ly: 4, Topology: lattice.Square, Q: 2}, "Lx"},
		{"negative height", Params{Lx: 4, Ly: -1, Topology: lattice.Square, Q: 2}, "Ly"},
		{"no topology", Params{Lx: 4, Ly: 4, Q: 2}, "Topology"},
		{"tall chain", Params{Lx: 4, Ly: 2, Topology: lattice.Chain, Q: 2}, "Ly"},
		{"single column", Params{Lx: 1, Ly: 4, Topology: lattice.Square, Q: 2, J: 1, T: 5}, "Lx"},
		{"single row", Params{Lx: 4, Ly: 1, Topology: lattice.Square, Q: 2, J: 1, T: 5}, "Ly"},
		{"triangular single row", Params{Lx: 6, Ly: 1, Topology: lattice.Triangular, Q: 2, J: -1, T: 1}, "Ly"},
		{"potts single column", Params{Lx: 1, Ly: 4, Topology: lattice.Square, Q: 3, J: 1, T: 1}, "Lx"},
		{"single site", Params{Lx: 1, Ly: 1, Topology: lattice.Square, Q: 2, J: 1, T: 5}, "Lx"},
		{"single site chain", Params{Lx: 1, Ly: 1, Topology: lattice.Chain, Q: 2, J: 1, T: 5}, "Lx"},
		{"one state", Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 1}, "Q"},
		{"potts field", Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 3, H: 1}, "H"},
		{"negative temperature", Params{Lx: 4, Ly: 4, Topology: lattice.Square, Q: 2, T: -1}, "T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.p)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestCriticalTemperature(t *testing.T) {
	tests := []struct {
		p    Params
		want float64
	}{
		{Params{Topology: lattice.Square, Q: 2, J: 1}, 2.269185314},
		{Params{Topology: lattice.Square, Q: 8, J: 1}, 1 / math.Log(1+math.Sqrt(8))},
		{Params{Topology: lattice.Triangular, Q: 2, J: -1}, 3.641},
		{Params{Topology: lattice.Chain, Q: 2, J: 1}, 0},
	}
	for _, tt := range tests {
		if got := CriticalTemperature(tt.p); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("%s q=%d: expected %f, got %f", tt.p.Topology.Name, tt.p.Q, tt.want, got)
		}
	}
}
