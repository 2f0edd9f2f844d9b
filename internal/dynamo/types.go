package dynamo

import (
	"fmt"
	"math"
)

// DefaultGravity is the downward acceleration applied to every world, in m/s².
const DefaultGravity = -9.8

// State is the physical state of one simulated point mass.
type State struct {
	T  float64 `json:"t" yaml:"t"`
	Y  float64 `json:"y" yaml:"y"`
	Vy float64 `json:"vy" yaml:"vy"`
}

// Initial returns the state of a freshly created world.
func Initial(y0, vy0 float64) State {
	return State{T: 0, Y: y0, Vy: vy0}
}

func (s State) IsValid() bool {
	return isFinite(s.T) && isFinite(s.Y) && isFinite(s.Vy)
}

func (s State) Slice() []float64 {
	return []float64{s.T, s.Y, s.Vy}
}

func (s State) String() string {
	return fmt.Sprintf("t=%.6g y=%.6g vy=%.6g", s.T, s.Y, s.Vy)
}

// Handle identifies a world across the kernel boundary. Handles are allocated
// from a strictly increasing counter and are never reused.
type Handle uint64

// NullHandle is returned when no world could be created.
const NullHandle Handle = 0

func (h Handle) IsNull() bool { return h == NullHandle }

// Observer receives every committed state of a world.
type Observer interface {
	OnStep(s State)
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool { return isFinite(v) }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
