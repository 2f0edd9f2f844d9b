package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent worlds concurrently, each through its own
// calling context. Metrics and observers added to the base simulator are not
// used, since they are not safe to share between runs.
type Ensemble struct {
	base  *Simulator
	runs  []Config
	limit int
}

func NewEnsemble(s *Simulator, runs []Config) *Ensemble {
	return &Ensemble{base: s, runs: runs, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit bounds the number of runs in flight. n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) {
	e.limit = n
}

func (e *Ensemble) Run(ctx context.Context) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(e.runs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, cfg := range e.runs {
		g.Go(func() error {
			s := New(e.base.k)
			tr, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
