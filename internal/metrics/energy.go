package metrics

import (
	"math"

	"github.com/san-kum/physicslab/internal/dynamo"
)

// SpecificEnergy is the mechanical energy per unit mass of s under gravity g.
func SpecificEnergy(s dynamo.State, g float64) float64 {
	return 0.5*s.Vy*s.Vy - g*s.Y
}

// EnergyDrift tracks the largest relative deviation of the mechanical energy
// from its first observed value. When that value is exactly zero the
// absolute deviation is used instead.
type EnergyDrift struct {
	gravity       float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity float64) *EnergyDrift {
	return &EnergyDrift{gravity: gravity}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) OnStep(s dynamo.State) {
	energy := SpecificEnergy(s, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
