// Package optim searches parameter grids for the configuration that
// extremises a run metric, e.g. the temperature of the specific heat peak.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/experiment"
)

// Point is one evaluated grid node.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	// Maximize selects the largest metric instead of the smallest.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Builder turns a grid node into a ready experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// ConfigBuilder copies base and applies the node's parameters by dotted name.
func ConfigBuilder(base *config.Config, opts ...experiment.Option) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg, opts...)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

// Search evaluates every node and returns the best one with all evaluated
// points in grid order. metricName is looked up in the run metrics, then the
// summary.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (Point, []Point, error) {
	best := Point{Value: math.Inf(1)}
	if g.Maximize {
		best.Value = math.Inf(-1)
	}
	var all []Point

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &best, &all)
	if err != nil {
		return Point{}, all, err
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	metricName string,
	best *Point,
	all *[]Point,
) error {
	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			return err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			val, ok = result.Summary[metricName]
		}
		if !ok {
			return fmt.Errorf("grid: run has no value %q", metricName)
		}

		*all = append(*all, Point{Params: current, Value: val})
		if (g.Maximize && val > best.Value) || (!g.Maximize && val < best.Value) {
			best.Value = val
			best.Params = current
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, best, all); err != nil {
			return err
		}
	}
	return nil
}
