// Package automation runs scripted sequences of experiments and parameter
// sweeps described in YAML.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/experiment"
	"github.com/san-kum/statmech/internal/sim"
	"github.com/san-kum/statmech/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one experiment. It starts from the preset when one is
// named, otherwise from the defaults, and then applies Params by dotted name.
type ScenarioStep struct {
	Model  string             `yaml:"model"`
	Preset string             `yaml:"preset"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult pairs a finished step with its stored run ID, if it was saved.
type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// StepConfig builds the configuration of one step.
func StepConfig(step ScenarioStep) (*config.Config, error) {
	var cfg *config.Config
	if step.Preset != "" {
		cfg = config.GetPreset(step.Model, step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", step.Model, step.Preset)
		}
	} else {
		cfg = config.DefaultConfig()
		cfg.Model = step.Model
	}
	for name, v := range step.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// Runner executes scenarios and sweeps. A nil store keeps results in memory
// only.
type Runner struct {
	registry *experiment.Registry
	store    *storage.Store
	logger   *log.Logger
}

func NewRunner(registry *experiment.Registry, store *storage.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{registry: registry, store: store, logger: logger}
}

func (r *Runner) run(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	exp := experiment.New(cfg, experiment.WithRegistry(r.registry), experiment.WithLogger(r.logger))
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// RunScenario executes all steps in order and stops at the first failure.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		r.logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "model", step.Model)

		cfg, err := StepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := r.run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.SaveAs != "" && r.store != nil {
			id, err := r.store.Save(cfg, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
			r.logger.Info("saved", "name", step.SaveAs, "run", id)
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs one model across evenly spaced values of a parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the summary and metrics of one sweep point.
type SweepResult struct {
	ParamValue float64
	Summary    map[string]float64
	Metrics    map[string]float64
}

// Value looks a name up in the summary, then the metrics.
func (s SweepResult) Value(name string) (float64, bool) {
	if v, ok := s.Summary[name]; ok {
		return v, true
	}
	v, ok := s.Metrics[name]
	return v, ok
}

// RunSweep executes a parameter sweep
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one point, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return results, err
		}

		result, err := r.run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Summary:    result.Summary,
			Metrics:    result.Metrics,
		})

		r.logger.Debug("sweep point", "index", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
