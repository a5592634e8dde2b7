// Package metrics holds per-tick observables of a ball world. Every metric
// is fed the live balls and the collision report after each tick.
package metrics

import (
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
)

type Metric interface {
	Name() string
	Observe(balls []world.Entry, report physics.StepReport)
	Value() float64
	Reset()
}

// Standard returns a fresh instance of every metric except Stability,
// which needs a threshold.
func Standard() []Metric {
	return []Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewMomentum(),
		NewSpeedSpread(),
		NewContactRate(),
		NewPopulation(),
	}
}
