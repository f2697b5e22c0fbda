package experiment

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/statmech/internal/cluster"
	"github.com/san-kum/statmech/internal/harddisk"
	"github.com/san-kum/statmech/internal/lattice"
	"github.com/san-kum/statmech/internal/spin"
	"github.com/san-kum/statmech/internal/stats"
	"github.com/san-kum/statmech/internal/wanglandau"
)

// SpinEngine advances an Ising or Potts model by one Metropolis sweep or one
// Wolff cluster flip per step.
type SpinEngine struct {
	name  string
	model *spin.Model
	wolff bool
}

func NewSpinEngine(name string, p spin.Params, dynamics string) (*SpinEngine, error) {
	if dynamics != "metropolis" && dynamics != "wolff" {
		return nil, fmt.Errorf("unknown dynamics: %s", dynamics)
	}
	m, err := spin.New(p)
	if err != nil {
		return nil, err
	}
	if dynamics == "wolff" {
		if err := p.ValidateWolff(); err != nil {
			return nil, err
		}
	}
	return &SpinEngine{name: name, model: m, wolff: dynamics == "wolff"}, nil
}

func (e *SpinEngine) Name() string       { return e.name }
func (e *SpinEngine) Model() *spin.Model { return e.model }
func (e *SpinEngine) ResetData()         { e.model.ResetData() }

func (e *SpinEngine) Series() []string {
	return []string{"energy", "magnetization", "order", "staggered"}
}

func (e *SpinEngine) Step() error {
	if e.wolff {
		_, err := e.model.WolffStep()
		return err
	}
	e.model.Step()
	return nil
}

// Observables are per spin except the order parameter, which is already
// normalised for Potts.
func (e *SpinEngine) Observables() []float64 {
	n := float64(e.model.N())
	order := e.model.OrderParameter()
	if e.model.Q() == 2 {
		order /= n
	}
	return []float64{
		e.model.Energy() / n,
		float64(e.model.Magnetization()) / n,
		order,
		float64(e.model.StaggeredMagnetization()) / n,
	}
}

func (e *SpinEngine) Summary() map[string]float64 {
	m := e.model
	n := float64(m.N())
	return map[string]float64{
		"temperature":              m.Temperature(),
		"mcs":                      float64(m.MCS()),
		"mean_energy":              m.MeanEnergy() / n,
		"mean_abs_magnetization":   m.MeanAbsMagnetization() / n,
		"specific_heat":            m.SpecificHeat(),
		"susceptibility":           m.Susceptibility(),
		"staggered_susceptibility": m.StaggeredSusceptibility(),
		"acceptance":               m.AcceptanceRatio(),
	}
}

// PercolationEngine occupies one site per step. A full lattice starts a new
// realisation, and the occupation fraction at which each one first spanned is
// averaged into a threshold estimate.
type PercolationEngine struct {
	perc         *cluster.Percolation
	threshold    stats.Accumulator
	realisations int
}

func NewPercolationEngine(L int, seed int64) (*PercolationEngine, error) {
	p, err := cluster.New(L, seed)
	if err != nil {
		return nil, err
	}
	return &PercolationEngine{perc: p}, nil
}

func (e *PercolationEngine) Name() string                      { return "percolation" }
func (e *PercolationEngine) Percolation() *cluster.Percolation { return e.perc }

func (e *PercolationEngine) Series() []string {
	return []string{"occupation", "spanning", "mean_cluster_size"}
}

func (e *PercolationEngine) Step() error {
	if e.perc.Occupied() == e.perc.N() {
		e.threshold.Add(float64(e.perc.SpanningFirstAt()) / float64(e.perc.N()))
		e.realisations++
		e.perc.Reset()
	}
	e.perc.AddRandomSite()
	return nil
}

func (e *PercolationEngine) Observables() []float64 {
	n := float64(e.perc.N())
	return []float64{
		e.perc.OccupationProbability(),
		float64(e.perc.SpanningClusterSize()) / n,
		e.perc.MeanClusterSize(),
	}
}

func (e *PercolationEngine) Summary() map[string]float64 {
	out := map[string]float64{
		"realisations":      float64(e.realisations),
		"threshold":         e.threshold.Mean(),
		"threshold_spread":  math.Sqrt(math.Max(e.threshold.Variance(), 0)),
		"occupation":        e.perc.OccupationProbability(),
		"mean_cluster_size": e.perc.MeanClusterSize(),
	}
	if at := e.perc.SpanningFirstAt(); at > 0 {
		out["spanning_first_at"] = float64(at) / float64(e.perc.N())
	}
	return out
}

// ResetData forgets finished realisations. The current one is kept.
func (e *PercolationEngine) ResetData() {
	e.threshold.Reset()
	e.realisations = 0
}

// HardDiskEngine advances the gas by one collision per step.
type HardDiskEngine struct {
	gas  *harddisk.Engine
	last harddisk.Event
}

func NewHardDiskEngine(p harddisk.Params, opts ...harddisk.Option) (*HardDiskEngine, error) {
	g, err := harddisk.New(p, opts...)
	if err != nil {
		return nil, err
	}
	return &HardDiskEngine{gas: g}, nil
}

func (e *HardDiskEngine) Name() string              { return "harddisk" }
func (e *HardDiskEngine) Gas() *harddisk.Engine     { return e.gas }
func (e *HardDiskEngine) LastEvent() harddisk.Event { return e.last }
func (e *HardDiskEngine) ResetData()                { e.gas.ZeroAverages() }

func (e *HardDiskEngine) Series() []string {
	return []string{"time", "temperature", "pressure", "free_path"}
}

func (e *HardDiskEngine) Step() error {
	ev, err := e.gas.Step()
	if err != nil {
		return err
	}
	e.last = ev
	return nil
}

func (e *HardDiskEngine) Observables() []float64 {
	return []float64{
		e.gas.Time(),
		e.gas.Temperature(),
		e.gas.MeanPressure(),
		e.gas.MeanFreePath(),
	}
}

func (e *HardDiskEngine) Summary() map[string]float64 {
	g := e.gas
	return map[string]float64{
		"time":             g.Time(),
		"collisions":       float64(g.Collisions()),
		"mean_temperature": g.MeanTemperature(),
		"mean_pressure":    g.MeanPressure(),
		"mean_free_path":   g.MeanFreePath(),
		"mean_free_time":   g.MeanFreeTime(),
		"heat_capacity":    g.HeatCapacity(),
	}
}

// WangLandauEngine runs one batch of CheckEvery sweeps per step and stops
// refining once ln f has converged.
type WangLandauEngine struct {
	sampler *wanglandau.Sampler
	l       int
}

func NewWangLandauEngine(p wanglandau.Params, logger *log.Logger) (*WangLandauEngine, error) {
	s, err := wanglandau.New(p, wanglandau.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &WangLandauEngine{sampler: s, l: p.L}, nil
}

func (e *WangLandauEngine) Name() string                 { return "wanglandau" }
func (e *WangLandauEngine) Sampler() *wanglandau.Sampler { return e.sampler }

// ResetData is a no-op: ln g is the result, not an average.
func (e *WangLandauEngine) ResetData() {}

func (e *WangLandauEngine) Series() []string {
	return []string{"lnf", "iterations", "energy"}
}

func (e *WangLandauEngine) Step() error {
	if !e.sampler.Converged() {
		e.sampler.Advance()
	}
	return nil
}

func (e *WangLandauEngine) Observables() []float64 {
	n := float64(e.sampler.N())
	return []float64{e.sampler.LnF(), float64(e.sampler.Iterations()), float64(e.sampler.Energy()) / n}
}

func (e *WangLandauEngine) Summary() map[string]float64 {
	levels := e.sampler.Levels()
	n := float64(e.sampler.N())
	tc := spin.CriticalTemperature(spin.Params{Lx: e.l, Ly: e.l, Topology: lattice.Square, Q: 2, J: 1})
	converged := 0.0
	if e.sampler.Converged() {
		converged = 1
	}
	return map[string]float64{
		"lnf":              e.sampler.LnF(),
		"iterations":       float64(e.sampler.Iterations()),
		"sweeps":           float64(e.sampler.Sweeps()),
		"converged":        converged,
		"levels":           float64(len(levels)),
		"tc_energy":        wanglandau.MeanEnergy(levels, tc) / n,
		"tc_specific_heat": wanglandau.HeatCapacity(levels, tc) / n,
	}
}
