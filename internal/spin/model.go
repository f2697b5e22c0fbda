package spin

import (
	"math"
	"math/rand"

	"github.com/san-kum/statmech/internal/lattice"
	"github.com/san-kum/statmech/internal/stats"
)

// MinTemperature is the floor applied to T so that exp(-dE/T) underflows to
// zero instead of producing NaN.
const MinTemperature = 1e-6

type Params struct {
	Lx, Ly   int
	Topology lattice.Topology
	Q        int
	J        float64
	H        float64
	T        float64
	Seed     int64
}

// DefaultParams is a 32×32 square Ising ferromagnet at the critical temperature.
func DefaultParams() Params {
	p := Params{Lx: 32, Ly: 32, Topology: lattice.Square, Q: 2, J: 1}
	p.T = CriticalTemperature(p)
	return p
}

type Model struct {
	lx, ly int
	n      int
	z      int
	q      int
	j      float64
	h      float64
	t      float64
	topo   lattice.Topology

	spin   []int
	nbr    []int
	counts []int

	energy float64
	// Ising: sum of spins. Potts: population of the most occupied state.
	magnetization int
	// Ising spin sum over the even sublattice, 0 for Potts.
	staggered int
	even      []bool

	energyAcc    stats.Accumulator
	orderAcc     stats.Accumulator
	absMagAcc    stats.Accumulator
	staggeredAcc stats.Accumulator
	mcs          int
	trials       int64
	accepted     int64

	rng       *rand.Rand
	stack     []int
	inCluster []bool
}

func New(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	nbr, err := p.Topology.Neighbors(p.Lx, p.Ly)
	if err != nil {
		return nil, err
	}

	n := p.Lx * p.Ly
	m := &Model{
		lx:        p.Lx,
		ly:        p.Ly,
		n:         n,
		z:         p.Topology.Coordination(),
		q:         p.Q,
		j:         p.J,
		h:         p.H,
		t:         math.Max(p.T, MinTemperature),
		topo:      p.Topology,
		spin:      make([]int, n),
		nbr:       nbr,
		counts:    make([]int, p.Q),
		rng:       lattice.NewRand(p.Seed),
		inCluster: make([]bool, n),
		stack:     make([]int, 0, n),
		even:      make([]bool, n),
	}
	for i := range m.even {
		x, y := lattice.Coord(i, p.Lx)
		m.even[i] = lattice.Sublattice(x, y) == 0
	}
	m.Align()
	return m, nil
}

// Validate reports the first parameter that cannot describe a model.
func (p Params) Validate() error {
	switch {
	case p.Lx <= 0:
		return &ConfigError{Field: "Lx", Value: p.Lx, Reason: "must be positive"}
	case p.Ly <= 0:
		return &ConfigError{Field: "Ly", Value: p.Ly, Reason: "must be positive"}
	case p.Topology.Coordination() == 0:
		return &ConfigError{Field: "Topology", Value: p.Topology.Name, Reason: "has no neighbours"}
	case p.Topology.Name == lattice.Chain.Name && p.Ly != 1:
		return &ConfigError{Field: "Ly", Value: p.Ly, Reason: "chain topology needs Ly = 1"}
	case p.Topology.SelfBonded(p.Lx, p.Ly):
		if p.Lx == 1 {
			return &ConfigError{Field: "Lx", Value: p.Lx, Reason: "a neighbour offset wraps onto the site itself"}
		}
		return &ConfigError{Field: "Ly", Value: p.Ly, Reason: "a neighbour offset wraps onto the site itself"}
	case p.Q < 2:
		return &ConfigError{Field: "Q", Value: p.Q, Reason: "need at least two states"}
	case p.Q > 2 && p.H != 0:
		return &ConfigError{Field: "H", Value: p.H, Reason: "external field is only defined for Ising spins"}
	case p.T < 0 || math.IsNaN(p.T):
		return &ConfigError{Field: "T", Value: p.T, Reason: "must be non-negative"}
	}
	return nil
}

// ValidateWolff reports whether Wolff cluster moves apply to p: they need a
// ferromagnetic coupling and no external field.
func (p Params) ValidateWolff() error {
	return checkWolff(p.J, p.H)
}

func checkWolff(j, h float64) error {
	if j <= 0 {
		return ErrWolffAntiferro
	}
	if h != 0 {
		return ErrWolffField
	}
	return nil
}

// Align sets every spin to the first state (+1 for Ising, 0 for Potts),
// recomputes E and M and clears the accumulators.
func (m *Model) Align() {
	for i := range m.spin {
		if m.isIsing() {
			m.spin[i] = 1
		} else {
			m.spin[i] = 0
		}
	}
	m.energy = m.RecomputeEnergy()
	m.recountStates()
	m.magnetization = m.RecomputeMagnetization()
	m.staggered = m.recomputeStaggered()
	m.ResetData()
}

// Randomize draws every spin uniformly, recomputes E and M and clears the
// accumulators.
func (m *Model) Randomize() {
	for i := range m.spin {
		if m.isIsing() {
			m.spin[i] = 2*m.rng.Intn(2) - 1
		} else {
			m.spin[i] = m.rng.Intn(m.q)
		}
	}
	m.energy = m.RecomputeEnergy()
	m.recountStates()
	m.magnetization = m.RecomputeMagnetization()
	m.staggered = m.recomputeStaggered()
	m.ResetData()
}

func (m *Model) isIsing() bool { return m.q == 2 }

// SetTemperature floors T at MinTemperature. Negative values are rejected.
func (m *Model) SetTemperature(t float64) error {
	if t < 0 || math.IsNaN(t) {
		return &ConfigError{Field: "T", Value: t, Reason: "must be non-negative"}
	}
	m.t = math.Max(t, MinTemperature)
	return nil
}

// SetField changes H and shifts E by the field term of the current
// magnetization.
func (m *Model) SetField(h float64) error {
	if !m.isIsing() && h != 0 {
		return &ConfigError{Field: "H", Value: h, Reason: "external field is only defined for Ising spins"}
	}
	m.energy += (m.h - h) * float64(m.magnetization)
	m.h = h
	return nil
}

// MetropolisTrial proposes one single-site change at a random site and
// reports whether it was accepted.
func (m *Model) MetropolisTrial() bool {
	i := m.rng.Intn(m.n)
	m.trials++

	var dE float64
	var trial int
	if m.isIsing() {
		dE = 2 * float64(m.spin[i]) * (m.j*float64(m.neighborSum(i)) + m.h)
	} else {
		trial = (m.spin[i] + 1 + m.rng.Intn(m.q-1)) % m.q
		dE = -m.j * float64(m.neighborMatches(i, trial)-m.neighborMatches(i, m.spin[i]))
	}

	if dE > 0 && m.rng.Float64() >= math.Exp(-dE/m.t) {
		return false
	}

	m.accepted++
	m.energy += dE
	if m.isIsing() {
		m.spin[i] = -m.spin[i]
		m.magnetization += 2 * m.spin[i]
		if m.even[i] {
			m.staggered += 2 * m.spin[i]
		}
		return true
	}
	m.counts[m.spin[i]]--
	m.counts[trial]++
	m.spin[i] = trial
	m.magnetization = m.maxCount()
	return true
}

// Step performs one Monte Carlo sweep of N Metropolis trials, accumulates the
// observables and returns the number of accepted changes.
func (m *Model) Step() int {
	accepted := 0
	for k := 0; k < m.n; k++ {
		if m.MetropolisTrial() {
			accepted++
		}
	}
	m.accumulate()
	return accepted
}

// BondProbability is the Wolff bond activation probability at the current
// temperature: 1-exp(-2J/T) for Ising, 1-exp(-J/T) for Potts.
func (m *Model) BondProbability() float64 {
	if m.isIsing() {
		return 1 - math.Exp(-2*m.j/m.t)
	}
	return 1 - math.Exp(-m.j/m.t)
}

// WolffStep grows one cluster from a random seed and flips it (Ising) or
// relabels it to a single new random state (Potts). E and M change once by the
// net change over the cluster. It returns the cluster size.
func (m *Model) WolffStep() (int, error) {
	if err := checkWolff(m.j, m.h); err != nil {
		return 0, err
	}

	size := m.growCluster(m.BondProbability())
	seed := m.stack[0]
	old := m.spin[seed]
	next := -old
	if !m.isIsing() {
		next = (old + 1 + m.rng.Intn(m.q-1)) % m.q
	}

	// only bonds leaving the cluster change energy
	var dE float64
	for _, i := range m.stack {
		for k := 0; k < m.z; k++ {
			nb := m.nbr[i*m.z+k]
			if m.inCluster[nb] {
				continue
			}
			sj := m.spin[nb]
			if m.isIsing() {
				dE += 2 * m.j * float64(old*sj)
			} else {
				dE -= m.j * float64(delta(next, sj)-delta(old, sj))
			}
		}
	}

	for _, i := range m.stack {
		m.spin[i] = next
		m.inCluster[i] = false
		if m.isIsing() && m.even[i] {
			m.staggered += 2 * next
		}
	}
	m.energy += dE
	if m.isIsing() {
		m.magnetization += 2 * next * size
	} else {
		m.counts[old] -= size
		m.counts[next] += size
		m.magnetization = m.maxCount()
	}

	m.accumulate()
	return size, nil
}

// growCluster fills m.stack with the cluster and marks its sites in
// m.inCluster. A site is marked when pushed, so it enters at most once.
func (m *Model) growCluster(p float64) int {
	m.stack = m.stack[:0]
	seed := m.rng.Intn(m.n)
	state := m.spin[seed]
	m.stack = append(m.stack, seed)
	m.inCluster[seed] = true

	for head := 0; head < len(m.stack); head++ {
		i := m.stack[head]
		for k := 0; k < m.z; k++ {
			nb := m.nbr[i*m.z+k]
			if m.inCluster[nb] || m.spin[nb] != state {
				continue
			}
			if m.rng.Float64() < p {
				m.inCluster[nb] = true
				m.stack = append(m.stack, nb)
			}
		}
	}
	return len(m.stack)
}

func (m *Model) accumulate() {
	m.energyAcc.Add(m.energy)
	m.orderAcc.Add(m.OrderParameter())
	m.absMagAcc.Add(math.Abs(float64(m.magnetization)))
	m.staggeredAcc.Add(float64(m.staggered))
	m.mcs++
}

// ResetData clears accumulators and counters without touching the spins.
func (m *Model) ResetData() {
	m.energyAcc.Reset()
	m.orderAcc.Reset()
	m.absMagAcc.Reset()
	m.staggeredAcc.Reset()
	m.mcs = 0
	m.trials = 0
	m.accepted = 0
}

func (m *Model) neighborSum(i int) int {
	sum := 0
	for k := 0; k < m.z; k++ {
		sum += m.spin[m.nbr[i*m.z+k]]
	}
	return sum
}

func (m *Model) neighborMatches(i, state int) int {
	c := 0
	for k := 0; k < m.z; k++ {
		if m.spin[m.nbr[i*m.z+k]] == state {
			c++
		}
	}
	return c
}

func (m *Model) recountStates() {
	if m.isIsing() {
		return
	}
	for s := range m.counts {
		m.counts[s] = 0
	}
	for _, s := range m.spin {
		m.counts[s]++
	}
}

func (m *Model) maxCount() int {
	best := m.counts[0]
	for _, c := range m.counts[1:] {
		if c > best {
			best = c
		}
	}
	return best
}

func delta(a, b int) int {
	if a == b {
		return 1
	}
	return 0
}
