// Package sim drives worlds through the kernel the way an embedding
// application does: one [Session] per world, a [Simulator] that runs a
// session frame by frame, and an [Ensemble] that runs many in parallel.
package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/physicslab/internal/config"
	"github.com/san-kum/physicslab/internal/dynamo"
)

type Config struct {
	Y0            float64
	Vy0           float64
	Dt            float64
	Duration      float64
	StepsPerFrame uint32
}

func FromRunConfig(rc config.RunConfig) Config {
	return Config{
		Y0:            rc.Y0,
		Vy0:           rc.Vy0,
		Dt:            rc.Dt,
		Duration:      rc.Duration,
		StepsPerFrame: rc.StepsPerFrame,
	}
}

// MaxFrames bounds the number of step calls of a single run.
const MaxFrames = 1_000_000

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt must be positive and finite, got %g", c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("duration must be positive and finite, got %g", c.Duration)
	}
	if c.StepsPerFrame == 0 {
		return fmt.Errorf("steps per frame must be positive")
	}
	_, err := c.Frames()
	return err
}

// Frames is the number of step calls needed to cover Duration.
func (c Config) Frames() (int, error) {
	ratio := c.Duration / (c.Dt * float64(c.StepsPerFrame))
	if math.IsNaN(ratio) || ratio > MaxFrames {
		return 0, fmt.Errorf("run needs %g frames, limit is %d", ratio, MaxFrames)
	}
	return int(math.Ceil(ratio - 1e-9)), nil
}

// Metric observes every committed state of a run.
type Metric interface {
	dynamo.Observer
	Name() string
	Value() float64
	Reset()
}

// Trajectory holds the states of one run, starting with the initial state.
type Trajectory struct {
	States  []dynamo.State
	Metrics map[string]float64
}

func (tr *Trajectory) Final() dynamo.State {
	if len(tr.States) == 0 {
		return dynamo.State{}
	}
	return tr.States[len(tr.States)-1]
}

func (tr *Trajectory) Times() []float64 {
	return tr.column(func(s dynamo.State) float64 { return s.T })
}

func (tr *Trajectory) Heights() []float64 {
	return tr.column(func(s dynamo.State) float64 { return s.Y })
}

func (tr *Trajectory) Velocities() []float64 {
	return tr.column(func(s dynamo.State) float64 { return s.Vy })
}

func (tr *Trajectory) column(fn func(dynamo.State) float64) []float64 {
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = fn(s)
	}
	return out
}
