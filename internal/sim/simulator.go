package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/kernel"
	"github.com/san-kum/physicslab/internal/metrics"
)

type Simulator struct {
	k         *kernel.Kernel
	metrics   []Metric
	observers []dynamo.Observer
}

func New(k *kernel.Kernel) *Simulator {
	return &Simulator{
		k:         k,
		metrics:   make([]Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)            { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run creates a world, advances it StepsPerFrame steps at a time until
// Duration is covered, and destroys it. The context is checked between
// frames; on cancellation the partial trajectory is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sess, err := Open(s.k.NewCaller(), cfg.Y0, cfg.Vy0)
	if err != nil {
		return nil, fmt.Errorf("open world: %w", err)
	}
	defer sess.Close()

	frames, err := cfg.Frames()
	if err != nil {
		return nil, err
	}
	result := &Trajectory{
		States:  make([]dynamo.State, 0, min(frames, 4096)+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	drift := metrics.NewEnergyDrift(s.k.Gravity())

	x, err := sess.State()
	if err != nil {
		return nil, err
	}
	s.observe(drift, x)
	result.States = append(result.States, x)

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := sess.Step(cfg.Dt, cfg.StepsPerFrame); err != nil {
			return result, fmt.Errorf("frame %d: %w", i, err)
		}
		if x, err = sess.State(); err != nil {
			return result, fmt.Errorf("frame %d: %w", i, err)
		}
		s.observe(drift, x)
		result.States = append(result.States, x)
	}

	result.Metrics[drift.Name()] = drift.Value()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (s *Simulator) observe(drift *metrics.EnergyDrift, x dynamo.State) {
	drift.OnStep(x)
	for _, m := range s.metrics {
		m.OnStep(x)
	}
	for _, o := range s.observers {
		o.OnStep(x)
	}
}
