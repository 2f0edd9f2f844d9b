// Package optim searches run parameters for the configuration that
// minimises a trajectory metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/sim"
)

// Param is one axis of the grid.
type Param struct {
	Name   string
	Values []float64
}

// Builder turns one grid point into a run configuration.
type Builder func(params map[string]float64) (sim.Config, error)

type Result struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	// Rejected counts grid points the builder or the kernel refused.
	Rejected int
}

type GridSearch struct {
	params []Param
}

func NewGridSearch(params ...Param) *GridSearch {
	return &GridSearch{params: params}
}

// Search runs every grid point and returns the one with the lowest value of
// metric. Points whose configuration is invalid or denied by the kernel
// policy are skipped; any other run error aborts the search.
func (g *GridSearch) Search(ctx context.Context, s *sim.Simulator, build Builder, metric string) (*Result, error) {
	res := &Result{Value: math.Inf(1)}
	if err := g.search(ctx, 0, make(map[string]float64), s, build, metric, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return nil, fmt.Errorf("no admissible grid point (%d rejected)", res.Rejected)
	}
	return res, nil
}

func (g *GridSearch) search(
	ctx context.Context,
	depth int,
	current map[string]float64,
	s *sim.Simulator,
	build Builder,
	metric string,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.params) {
		cfg, err := build(current)
		if err != nil {
			res.Rejected++
			return nil
		}

		tr, err := s.Run(ctx, cfg)
		if err != nil {
			if errors.Is(err, dynamo.ErrPolicyDenied) || errors.Is(err, dynamo.ErrInvalidArgument) {
				res.Rejected++
				return nil
			}
			return err
		}
		res.Evaluated++

		val, ok := tr.Metrics[metric]
		if !ok {
			return fmt.Errorf("unknown metric: %s", metric)
		}
		if val < res.Value {
			res.Value = val
			res.Params = maps.Clone(current)
		}
		return nil
	}

	p := g.params[depth]
	for _, val := range p.Values {
		next := maps.Clone(current)
		next[p.Name] = val
		if err := g.search(ctx, depth+1, next, s, build, metric, res); err != nil {
			return err
		}
	}
	return nil
}
