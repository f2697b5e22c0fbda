package experiment

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/harddisk"
	"github.com/san-kum/statmech/internal/lattice"
	"github.com/san-kum/statmech/internal/metrics"
	"github.com/san-kum/statmech/internal/sim"
	"github.com/san-kum/statmech/internal/spin"
	"github.com/san-kum/statmech/internal/wanglandau"
)

// Builder constructs an engine from a run configuration. The seed overrides
// cfg.Seed so ensembles can share one config.
type Builder func(cfg *config.Config, seed int64, logger *log.Logger) (sim.Engine, error)

type Registry struct {
	models map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]Builder),
	}

	r.models["ising"] = func(cfg *config.Config, seed int64, _ *log.Logger) (sim.Engine, error) {
		p, err := SpinParams(cfg.Spin, seed)
		if err != nil {
			return nil, err
		}
		p.Q = 2
		return NewSpinEngine("ising", p, cfg.Spin.Dynamics)
	}
	r.models["potts"] = func(cfg *config.Config, seed int64, _ *log.Logger) (sim.Engine, error) {
		p, err := SpinParams(cfg.Spin, seed)
		if err != nil {
			return nil, err
		}
		return NewSpinEngine("potts", p, cfg.Spin.Dynamics)
	}
	r.models["percolation"] = func(cfg *config.Config, seed int64, _ *log.Logger) (sim.Engine, error) {
		return NewPercolationEngine(cfg.Percolation.L, seed)
	}
	r.models["harddisk"] = func(cfg *config.Config, seed int64, logger *log.Logger) (sim.Engine, error) {
		hd := cfg.HardDisk
		p := harddisk.Params{N: hd.N, Lx: hd.Lx, Ly: hd.Ly, Temperature: hd.T, Crystal: hd.Crystal, Seed: seed}
		return NewHardDiskEngine(p, harddisk.WithLogger(logger), harddisk.WithOverlapCheck(hd.CheckOverlap))
	}
	r.models["wanglandau"] = func(cfg *config.Config, seed int64, logger *log.Logger) (sim.Engine, error) {
		wl := cfg.WangLandau
		p := wanglandau.Params{
			L:             wl.L,
			FlatThreshold: wl.FlatThreshold,
			FinalLnF:      wl.FinalLnF,
			CheckEvery:    wl.CheckEvery,
			MaxSweeps:     wl.MaxSweeps,
			Seed:          seed,
		}
		return NewWangLandauEngine(p, logger)
	}

	return r
}

// SpinParams converts a spin section into model parameters.
func SpinParams(c config.SpinConfig, seed int64) (spin.Params, error) {
	topo, err := lattice.Lookup(c.Topology)
	if err != nil {
		return spin.Params{}, err
	}
	return spin.Params{Lx: c.Lx, Ly: c.Ly, Topology: topo, Q: c.Q, J: c.J, H: c.H, T: c.T, Seed: seed}, nil
}

// Register adds or replaces a model builder.
func (r *Registry) Register(name string, b Builder) {
	r.models[name] = b
}

func (r *Registry) GetModel(name string, cfg *config.Config, seed int64, logger *log.Logger) (sim.Engine, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(cfg, seed, logger)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metrics for a model. Metrics hold state, so
// every run needs its own set.
func (r *Registry) DefaultMetrics(model string) []sim.Metric {
	switch model {
	case "ising", "potts":
		return []sim.Metric{
			metrics.NewMean("energy"),
			metrics.NewFluctuation("energy"),
			metrics.NewBlockError("energy", 10),
			metrics.NewAutocorrTime("energy", 50),
			metrics.NewAutocorrTime("order", 50),
		}
	case "percolation":
		return []sim.Metric{
			metrics.NewMean("spanning"),
		}
	case "harddisk":
		return []sim.Metric{
			metrics.NewDrift("temperature"),
			metrics.NewBlockError("pressure", 10),
		}
	default:
		return nil
	}
}
