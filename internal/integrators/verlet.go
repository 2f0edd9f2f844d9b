package integrators

import "github.com/san-kum/physicslab/internal/dynamo"

// Verlet is velocity Verlet. With constant acceleration both half kicks see
// the same force, so it reproduces the analytic parabola exactly.
type Verlet struct {
	G float64
}

func NewVerlet(g float64) *Verlet {
	return &Verlet{G: g}
}

func (v *Verlet) Name() string { return "velocity_verlet" }

func (v *Verlet) Advance(s dynamo.State, dt float64) dynamo.State {
	halfDt := 0.5 * dt
	vHalf := s.Vy + v.G*halfDt
	y := s.Y + vHalf*dt
	return dynamo.State{
		T:  s.T + dt,
		Y:  y,
		Vy: vHalf + v.G*halfDt,
	}
}
