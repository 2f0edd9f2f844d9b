// Package integrators advances a point mass under constant acceleration.
//
// Every integrator is a pure function of the current state and the time
// increment; none of them keeps state between calls, so one value can be
// shared by any number of worlds.
package integrators

import "github.com/san-kum/physicslab/internal/dynamo"

type Integrator interface {
	Name() string
	Advance(s dynamo.State, dt float64) dynamo.State
}

// derive returns (dy/dt, dvy/dt) for constant acceleration g.
func derive(vy, g float64) (float64, float64) {
	return vy, g
}
