package metrics

import (
	"math"

	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
)

// KineticEnergyOf returns the total ½mv² of balls.
func KineticEnergyOf(balls []world.Entry) float64 {
	var total float64
	for _, e := range balls {
		v := e.Ball.Velocity
		speedSq := float64(v[0])*float64(v[0]) + float64(v[1])*float64(v[1])
		total += 0.5 * float64(e.Ball.Mass) * speedSq
	}
	return total
}

// KineticEnergy is the mean total kinetic energy over observed ticks.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(balls []world.Entry, _ physics.StepReport) {
	e.total += KineticEnergyOf(balls)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure of the kinetic energy from
// its first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(balls []world.Entry, _ physics.StepReport) {
	energy := KineticEnergyOf(balls)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
