// Package wanglandau estimates the density of states g(E) of the square-lattice
// Ising ferromagnet (J = 1) with Wang-Landau sampling.
//
// A random walk in configuration space accepts a flip with probability
// min(1, g(E)/g(E')) and raises ln g of every visited level by ln f. When the
// visit histogram is flat, ln f is halved (f → √f) and the histogram cleared.
// Thermodynamics at any temperature then follow from ln g alone.
package wanglandau

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/san-kum/statmech/internal/lattice"
)

var (
	ErrInvalidParams = errors.New("wanglandau: invalid parameters")
	ErrNotConverged  = errors.New("wanglandau: sweep limit reached before convergence")
)

type Params struct {
	L int
	// FlatThreshold is the fraction of the mean visit count every visited
	// level must reach for the histogram to count as flat.
	FlatThreshold float64
	// FinalLnF stops the refinement once ln f drops to it.
	FinalLnF float64
	// CheckEvery is the number of sweeps between flatness checks.
	CheckEvery int
	// MaxSweeps bounds Run; 0 means no bound.
	MaxSweeps int
	Seed      int64
}

func DefaultParams() Params {
	return Params{L: 8, FlatThreshold: 0.8, FinalLnF: 1e-4, CheckEvery: 1000}
}

func (p Params) Validate() error {
	switch {
	case p.L < 2:
		return fmt.Errorf("%w: L=%d, need at least 2", ErrInvalidParams, p.L)
	case p.FlatThreshold <= 0 || p.FlatThreshold >= 1:
		return fmt.Errorf("%w: flat threshold %g not in (0, 1)", ErrInvalidParams, p.FlatThreshold)
	case p.FinalLnF <= 0 || p.FinalLnF >= 1:
		return fmt.Errorf("%w: final ln f %g not in (0, 1)", ErrInvalidParams, p.FinalLnF)
	case p.CheckEvery < 1:
		return fmt.Errorf("%w: check interval %d", ErrInvalidParams, p.CheckEvery)
	case p.MaxSweeps < 0:
		return fmt.Errorf("%w: max sweeps %d", ErrInvalidParams, p.MaxSweeps)
	}
	return nil
}

type Sampler struct {
	l, n    int
	params  Params
	spin    []int
	nbr     []int
	energy  int // shifted by 2N so it indexes lnG
	lnG     []float64
	hist    []int64
	lnF     float64
	sweeps  int
	refined int

	rng    *rand.Rand
	logger *log.Logger
}

type Option func(*Sampler)

// WithLogger reports every refinement of f at info level.
func WithLogger(l *log.Logger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(p Params, opts ...Option) (*Sampler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	nbr, err := lattice.Square.Neighbors(p.L, p.L)
	if err != nil {
		return nil, err
	}

	n := p.L * p.L
	s := &Sampler{
		l:      p.L,
		n:      n,
		params: p,
		spin:   make([]int, n),
		nbr:    nbr,
		lnG:    make([]float64, 4*n+1),
		hist:   make([]int64, 4*n+1),
		lnF:    1,
		rng:    lattice.NewRand(p.Seed),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := range s.spin {
		s.spin[i] = 2*s.rng.Intn(2) - 1
	}
	e := 0
	for i := range s.spin {
		e -= s.spin[i] * s.neighborSum(i)
	}
	s.energy = e/2 + 2*n
	return s, nil
}

func (s *Sampler) neighborSum(i int) int {
	return s.spin[s.nbr[4*i]] + s.spin[s.nbr[4*i+1]] + s.spin[s.nbr[4*i+2]] + s.spin[s.nbr[4*i+3]]
}

// Sweep performs N single-flip trials, updating ln g and the histogram after
// each one.
func (s *Sampler) Sweep() {
	for k := 0; k < s.n; k++ {
		i := s.rng.Intn(s.n)
		dE := 2 * s.spin[i] * s.neighborSum(i)
		if s.rng.Float64() < math.Exp(s.lnG[s.energy]-s.lnG[s.energy+dE]) {
			s.spin[i] = -s.spin[i]
			s.energy += dE
		}
		s.lnG[s.energy] += s.lnF
		s.hist[s.energy]++
	}
	s.sweeps++
}

// IsFlat reports whether every visited level has at least FlatThreshold times
// the mean visit count.
func (s *Sampler) IsFlat() bool {
	var total int64
	levels := 0
	for _, h := range s.hist {
		if h > 0 {
			total += h
			levels++
		}
	}
	if levels == 0 {
		return false
	}
	limit := s.params.FlatThreshold * float64(total) / float64(levels)
	for _, h := range s.hist {
		if h > 0 && float64(h) < limit {
			return false
		}
	}
	return true
}

// Advance runs CheckEvery sweeps and refines f if the histogram became flat.
// It reports whether a refinement happened.
func (s *Sampler) Advance() bool {
	for k := 0; k < s.params.CheckEvery; k++ {
		s.Sweep()
	}
	if !s.IsFlat() {
		return false
	}
	s.lnF /= 2
	s.refined++
	for i := range s.hist {
		s.hist[i] = 0
	}
	s.logger.Info("refined modification factor", "iteration", s.refined, "lnf", s.lnF, "sweeps", s.sweeps)
	return true
}

// Run advances until ln f reaches FinalLnF. The context is checked between
// batches of sweeps.
func (s *Sampler) Run(ctx context.Context) error {
	for !s.Converged() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.params.MaxSweeps > 0 && s.sweeps >= s.params.MaxSweeps {
			return fmt.Errorf("%w: %d sweeps, ln f = %g", ErrNotConverged, s.sweeps, s.lnF)
		}
		s.Advance()
	}
	return nil
}

func (s *Sampler) Converged() bool { return s.lnF <= s.params.FinalLnF }
func (s *Sampler) LnF() float64    { return s.lnF }
func (s *Sampler) Iterations() int { return s.refined }
func (s *Sampler) Sweeps() int     { return s.sweeps }
func (s *Sampler) N() int          { return s.n }

// Energy returns the current (unshifted) energy.
func (s *Sampler) Energy() int { return s.energy - 2*s.n }

// Level is one visited energy with its density of states.
type Level struct {
	E      int
	LnG    float64
	Visits int64
}

// Levels returns the visited energies in increasing order with ln g
// normalised so that Σ g(E) = 2^N.
func (s *Sampler) Levels() []Level {
	var out []Level
	for i, g := range s.lnG {
		if g > 0 {
			out = append(out, Level{E: i - 2*s.n, LnG: g, Visits: s.hist[i]})
		}
	}
	Normalize(out, float64(s.n)*math.Ln2)
	return out
}
