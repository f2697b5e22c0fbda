package spin

import (
	"math"

	"github.com/san-kum/statmech/internal/lattice"
)

// OrderParameter is M for Ising and ((q·Mmax/N)-1)/(q-1) for Potts.
func (m *Model) OrderParameter() float64 {
	if m.isIsing() {
		return float64(m.magnetization)
	}
	return (float64(m.q*m.magnetization)/float64(m.n) - 1) / float64(m.q-1)
}

// RecomputeEnergy sums every bond from scratch. Each bond is visited from both
// ends, so the coupling sum is halved.
func (m *Model) RecomputeEnergy() float64 {
	var bonds, field float64
	for i, s := range m.spin {
		for k := 0; k < m.z; k++ {
			sj := m.spin[m.nbr[i*m.z+k]]
			if m.isIsing() {
				bonds += float64(s * sj)
			} else {
				bonds += float64(delta(s, sj))
			}
		}
		if m.isIsing() {
			field += float64(s)
		}
	}
	return -m.j*bonds/2 - m.h*field
}

// RecomputeMagnetization is Σs for Ising and the population of the most
// occupied state for Potts.
func (m *Model) RecomputeMagnetization() int {
	if m.isIsing() {
		sum := 0
		for _, s := range m.spin {
			sum += s
		}
		return sum
	}
	counts := make([]int, m.q)
	best := 0
	for _, s := range m.spin {
		counts[s]++
		best = max(best, counts[s])
	}
	return best
}

// StaggeredMagnetization is the Ising spin sum over the even checkerboard
// sublattice, kept up to date by every move. It is 0 for Potts.
func (m *Model) StaggeredMagnetization() int { return m.staggered }

func (m *Model) recomputeStaggered() int {
	if !m.isIsing() {
		return 0
	}
	sum := 0
	for i, s := range m.spin {
		if m.even[i] {
			sum += s
		}
	}
	return sum
}

// SpecificHeat is (<E²>-<E>²)/(T²N).
func (m *Model) SpecificHeat() float64 {
	return m.energyAcc.Variance() / (m.t * m.t * float64(m.n))
}

// Susceptibility is (<M²>-<M>²)/(TN) for Ising and (<m²>-<m>²)/T for Potts,
// where m is the already normalised order parameter.
func (m *Model) Susceptibility() float64 {
	if m.isIsing() {
		return m.orderAcc.Variance() / (m.t * float64(m.n))
	}
	return m.orderAcc.Variance() / m.t
}

func (m *Model) StaggeredSusceptibility() float64 {
	return m.staggeredAcc.Variance() / (m.t * float64(m.n))
}

func (m *Model) MeanEnergy() float64           { return m.energyAcc.Mean() }
func (m *Model) MeanMagnetization() float64    { return m.orderAcc.Mean() }
func (m *Model) MeanAbsMagnetization() float64 { return m.absMagAcc.Mean() }

// AcceptanceRatio is accepted single-site changes per trial, 0 before any
// trial.
func (m *Model) AcceptanceRatio() float64 {
	if m.trials == 0 {
		return 0
	}
	return float64(m.accepted) / float64(m.trials)
}

func (m *Model) Energy() float64      { return m.energy }
func (m *Model) Magnetization() int   { return m.magnetization }
func (m *Model) MCS() int             { return m.mcs }
func (m *Model) N() int               { return m.n }
func (m *Model) Q() int               { return m.q }
func (m *Model) Temperature() float64 { return m.t }
func (m *Model) Field() float64       { return m.h }
func (m *Model) Size() (int, int)     { return m.lx, m.ly }

// Snapshot returns a copy of the spins in row-major order.
func (m *Model) Snapshot() []int {
	out := make([]int, len(m.spin))
	copy(out, m.spin)
	return out
}

// CriticalTemperature returns the known transition temperature of the
// configured model, or 0 when none is tabulated.
func CriticalTemperature(p Params) float64 {
	j := math.Abs(p.J)
	switch p.Topology.Name {
	case lattice.Square.Name:
		if p.Q == 2 {
			return 2 * j / math.Log(1+math.Sqrt2)
		}
		return j / math.Log(1+math.Sqrt(float64(p.Q)))
	case lattice.Triangular.Name:
		if p.Q == 2 {
			return 3.641 * j
		}
	}
	return 0
}

func (m *Model) Topology() lattice.Topology { return m.topo }
