package integrators

import "github.com/san-kum/physicslab/internal/dynamo"

type RK4 struct {
	G float64
}

func NewRK4(g float64) *RK4 {
	return &RK4{G: g}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Advance(s dynamo.State, dt float64) dynamo.State {
	halfDt := dt * 0.5

	k1y, k1v := derive(s.Vy, r.G)
	k2y, k2v := derive(s.Vy+halfDt*k1v, r.G)
	k3y, k3v := derive(s.Vy+halfDt*k2v, r.G)
	k4y, k4v := derive(s.Vy+dt*k3v, r.G)

	dt6 := dt / 6.0
	return dynamo.State{
		T:  s.T + dt,
		Y:  s.Y + dt6*(k1y+2*k2y+2*k3y+k4y),
		Vy: s.Vy + dt6*(k1v+2*k2v+2*k3v+k4v),
	}
}
