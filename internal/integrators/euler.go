package integrators

import "github.com/san-kum/physicslab/internal/dynamo"

// SemiImplicitEuler updates velocity first and uses the new velocity for the
// position update. It is the kernel default.
type SemiImplicitEuler struct {
	G float64
}

func NewSemiImplicitEuler(g float64) *SemiImplicitEuler {
	return &SemiImplicitEuler{G: g}
}

func (e *SemiImplicitEuler) Name() string { return "semi_implicit_euler" }

func (e *SemiImplicitEuler) Advance(s dynamo.State, dt float64) dynamo.State {
	// float64() rounds each product; results must not depend on FMA fusion.
	vy := s.Vy + float64(e.G*dt)
	return dynamo.State{
		T:  s.T + dt,
		Y:  s.Y + float64(vy*dt),
		Vy: vy,
	}
}

// Euler is the explicit forward Euler method, kept for comparison runs.
type Euler struct {
	G float64
}

func NewEuler(g float64) *Euler {
	return &Euler{G: g}
}

func (e *Euler) Name() string { return "explicit_euler" }

func (e *Euler) Advance(s dynamo.State, dt float64) dynamo.State {
	dy, dvy := derive(s.Vy, e.G)
	return dynamo.State{
		T:  s.T + dt,
		Y:  s.Y + float64(dy*dt),
		Vy: s.Vy + float64(dvy*dt),
	}
}
