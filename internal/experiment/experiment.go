// Package experiment turns a run configuration into a wired simulator: it
// builds the engine named by the config, attaches the default metrics and runs
// it, alone or as a seed ensemble.
package experiment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *log.Logger
	simulator *sim.Simulator
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) {
		if r != nil {
			e.registry = r
		}
	}
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup validates the config and builds the engine with its default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	engine, err := e.registry.GetModel(e.cfg.Model, e.cfg, e.cfg.Seed, e.logger)
	if err != nil {
		return fmt.Errorf("build %s: %w", e.cfg.Model, err)
	}

	e.simulator = sim.New(engine)
	for _, m := range e.registry.DefaultMetrics(e.cfg.Model) {
		e.simulator.AddMetric(m)
	}
	e.logger.Debug("engine ready", "model", e.cfg.Model, "seed", e.cfg.Seed, "series", engine.Series())
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	result, err := e.simulator.Run(ctx, e.runConfig())
	if err != nil {
		return result, err
	}
	e.logger.Info("run finished",
		"model", e.cfg.Model,
		"steps", result.StepsTaken,
		"samples", len(result.Samples),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// Ensemble runs the configured model for seeds Seed..Seed+runs-1 concurrently.
func (e *Experiment) Ensemble(ctx context.Context, runs int) ([]*sim.Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if runs < 1 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", runs)
	}

	factory := func(seed int64) (sim.Engine, error) {
		return e.registry.GetModel(e.cfg.Model, e.cfg, seed, e.logger)
	}
	ens := sim.NewEnsemble(factory, runs, e.cfg.Seed).
		WithMetrics(func() []sim.Metric { return e.registry.DefaultMetrics(e.cfg.Model) })

	start := time.Now()
	results, err := ens.Run(ctx, e.runConfig())
	if err != nil {
		return nil, err
	}
	e.logger.Info("ensemble finished", "model", e.cfg.Model, "runs", runs, "elapsed", time.Since(start).Round(time.Millisecond))
	return results, nil
}

func (e *Experiment) runConfig() sim.Config {
	return sim.Config{
		Steps:       e.cfg.Steps,
		Warmup:      e.cfg.Warmup,
		SampleEvery: e.cfg.SampleEvery,
	}
}

// GetSimulator returns the underlying simulator for adding observers and
// sinks.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config { return e.cfg }
