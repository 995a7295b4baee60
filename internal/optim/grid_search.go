package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/logger"
	"go.uber.org/zap"
)

// BuildFunc builds one experiment for a point of the grid.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

// Trial is one evaluated grid point. Err is set when the build or run
// failed; Value is +Inf then.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	trials     []Trial
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Search runs every combination and returns the one minimising metricName.
// A NaN metric counts as +Inf so unstable runs never win.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameter names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	g.trials = g.trials[:0]
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &best, &bestParams)
	if err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, fmt.Errorf("no grid point produced metric %q", metricName)
	}
	return bestParams, best, nil
}

// Trials lists every point of the last Search in visiting order.
func (g *GridSearch) Trials() []Trial { return g.trials }

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build BuildFunc,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := evaluate(ctx, build, current, metricName)
		g.trials = append(g.trials, Trial{Params: current, Value: val, Err: err})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Debug("grid point failed", zap.Any("params", current), zap.Error(err))
			return nil
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
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

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, build BuildFunc, params map[string]float64, metricName string) (float64, error) {
	exp, err := build(params)
	if err != nil {
		return math.Inf(1), err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return math.Inf(1), err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return math.Inf(1), fmt.Errorf("unknown metric: %s", metricName)
	}
	if math.IsNaN(val) {
		return math.Inf(1), nil
	}
	return val, nil
}
