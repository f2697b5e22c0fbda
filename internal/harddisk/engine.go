// Package harddisk implements event-driven molecular dynamics of hard disks of
// unit diameter in a periodic Lx×Ly box.
//
// Disks move ballistically between collisions, so the engine jumps straight
// from one collision to the next. Every disk i keeps the earliest predicted
// collision time with a partner j > i; a step advances the whole system to the
// global minimum, resolves that collision elastically and refreshes only the
// predictions that involved the two colliding disks.
//
// Units: disk diameter 1, mass 1, k_B = 1. The temperature is the kinetic
// energy per disk.
package harddisk

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/san-kum/statmech/internal/lattice"
	"github.com/san-kum/statmech/internal/stats"
)

// TimeBig stands for "no collision predicted".
const TimeBig = 1e6

const (
	placementAttempts = 10000
	maxDrifts         = 1000
	overlapTolerance  = 1e-5
	defaultBins       = 64
)

// closest packing fraction of disks in the plane
var maxPackingFraction = math.Pi / (2 * math.Sqrt(3))

type Params struct {
	N           int
	Lx, Ly      float64
	Temperature float64
	Crystal     bool
	Seed        int64
}

func DefaultParams() Params {
	return Params{N: 16, Lx: 10, Ly: 10, Temperature: 1}
}

// Event describes one resolved collision.
type Event struct {
	I, J   int
	Dt     float64
	Time   float64
	Virial float64
}

type Engine struct {
	n           int
	lx, ly      float64
	temperature float64
	crystal     bool
	velocityMax float64

	x, y          []float64
	vx, vy        []float64
	collisionTime []float64
	lastCollision []float64
	partner       []int

	time       float64
	since      float64
	collisions int
	steps      int
	virialAcc  float64
	mfpAcc     float64
	keAcc      float64
	ke2Acc     float64

	histBins      int
	velocityHist  *stats.Histogram
	checkOverlaps bool

	rng    *rand.Rand
	logger *log.Logger
}

func New(p Params, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		n:             p.N,
		lx:            p.Lx,
		ly:            p.Ly,
		temperature:   p.Temperature,
		crystal:       p.Crystal,
		velocityMax:   math.Sqrt(2 * p.Temperature),
		x:             make([]float64, p.N),
		y:             make([]float64, p.N),
		vx:            make([]float64, p.N),
		vy:            make([]float64, p.N),
		collisionTime: make([]float64, p.N),
		lastCollision: make([]float64, p.N),
		partner:       make([]int, p.N),
		histBins:      defaultBins,
		rng:           lattice.NewRand(p.Seed),
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.Initialize(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate rejects systems that cannot be built. Boxes shorter than two
// diameters are rejected so that a contact has a single minimum image.
func (p Params) Validate() error {
	switch {
	case p.N < 2:
		return fmt.Errorf("%w: N=%d, need at least 2 disks", ErrInvalidParams, p.N)
	case p.Lx < 2 || p.Ly < 2:
		return fmt.Errorf("%w: box %gx%g, need both sides >= 2", ErrInvalidParams, p.Lx, p.Ly)
	case !(p.Temperature > 0):
		return fmt.Errorf("%w: temperature %g must be positive", ErrInvalidParams, p.Temperature)
	}
	if fraction := float64(p.N) * math.Pi / 4 / (p.Lx * p.Ly); fraction >= maxPackingFraction {
		return fmt.Errorf("%w: packing fraction %.3f above close packing", ErrInvalidParams, fraction)
	}
	return nil
}

// Initialize places the disks, draws velocities of magnitude √(2T), removes
// the centre-of-mass drift and builds the collision lists.
func (e *Engine) Initialize() error {
	var err error
	if e.crystal {
		err = e.placeCrystal()
	} else {
		err = e.placeRandom()
	}
	if err != nil {
		return err
	}

	for i := 0; i < e.n; i++ {
		th := 2 * math.Pi * e.rng.Float64()
		e.vx[i] = e.velocityMax * math.Cos(th)
		e.vy[i] = e.velocityMax * math.Sin(th)
		e.x[i] = lattice.WrapFloat(e.x[i], e.lx)
		e.y[i] = lattice.WrapFloat(e.y[i], e.ly)
	}
	e.adjustMomentum()
	e.rebuildLists()
	e.ClearData()
	return nil
}

// SetState installs explicit positions and velocities, rebuilds every
// prediction and clears the accumulators. Momentum is left as given.
func (e *Engine) SetState(x, y, vx, vy []float64) error {
	for _, s := range [][]float64{x, y, vx, vy} {
		if len(s) != e.n {
			return fmt.Errorf("%w: got %d, want %d", ErrStateLength, len(s), e.n)
		}
	}
	for i := 0; i < e.n; i++ {
		e.x[i] = lattice.WrapFloat(x[i], e.lx)
		e.y[i] = lattice.WrapFloat(y[i], e.ly)
	}
	copy(e.vx, vx)
	copy(e.vy, vy)
	e.rebuildLists()
	e.ClearData()
	return nil
}

func (e *Engine) placeRandom() error {
	for i := 0; i < e.n; i++ {
		placed := false
		for attempt := 0; attempt < placementAttempts && !placed; attempt++ {
			e.x[i] = e.lx * e.rng.Float64()
			e.y[i] = e.ly * e.rng.Float64()
			placed = true
			for j := 0; j < i; j++ {
				dx := lattice.MinImage(e.x[i]-e.x[j], e.lx)
				dy := lattice.MinImage(e.y[i]-e.y[j], e.ly)
				if dx*dx+dy*dy < 1 {
					placed = false
					break
				}
			}
		}
		if !placed {
			return fmt.Errorf("%w: disk %d after %d attempts", ErrPlacement, i, placementAttempts)
		}
	}
	return nil
}

// placeCrystal fills an ns×ns grid row by row, shifting odd rows by half a
// spacing to form a triangular arrangement.
func (e *Engine) placeCrystal() error {
	ns := int(math.Sqrt(float64(e.n)))
	if ns*ns < e.n {
		ns++
	}
	ax := e.lx / float64(ns)
	ay := e.ly / float64(ns)
	if ax < 1 || ay < 1 {
		return fmt.Errorf("%w: crystal spacing %.3fx%.3f below one diameter", ErrPlacement, ax, ay)
	}

	for i := 0; i < e.n; i++ {
		ix, iy := i%ns, i/ns
		shift := 0.25
		if iy%2 == 1 {
			shift = 0.75
		}
		e.x[i] = ax * (float64(ix) + shift)
		e.y[i] = ay * (float64(iy) + 0.5)
	}
	return nil
}

// adjustMomentum removes the mean velocity and rescales back to the kinetic
// energy the disks had before.
func (e *Engine) adjustMomentum() {
	t0 := e.Temperature()
	var sx, sy float64
	for i := 0; i < e.n; i++ {
		sx += e.vx[i]
		sy += e.vy[i]
	}
	mx, my := sx/float64(e.n), sy/float64(e.n)
	for i := 0; i < e.n; i++ {
		e.vx[i] -= mx
		e.vy[i] -= my
	}

	t1 := e.Temperature()
	if t1 == 0 {
		return
	}
	a := math.Sqrt(t0 / t1)
	for i := 0; i < e.n; i++ {
		e.vx[i] *= a
		e.vy[i] *= a
	}
}

// ClearData resets the clock and every accumulator.
func (e *Engine) ClearData() {
	e.time = 0
	e.steps = 0
	for i := range e.lastCollision {
		e.lastCollision[i] = 0
	}
	e.ZeroAverages()
}

// ZeroAverages resets the accumulators but keeps the clock running. Time
// averages are taken from this point on.
func (e *Engine) ZeroAverages() {
	e.since = e.time
	e.collisions = 0
	e.virialAcc = 0
	e.mfpAcc = 0
	e.keAcc = 0
	e.ke2Acc = 0
	e.steps = 0
	vmax := 3 * e.velocityMax
	e.velocityHist = stats.NewHistogram(e.histBins, -vmax, vmax)
}
