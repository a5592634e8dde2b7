package metrics

import (
	"math"

	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
	"gonum.org/v1/gonum/stat"
)

// MomentumOf returns Σ m·v over balls.
func MomentumOf(balls []world.Entry) (px, py float64) {
	for _, e := range balls {
		m := float64(e.Ball.Mass)
		px += m * float64(e.Ball.Velocity[0])
		py += m * float64(e.Ball.Velocity[1])
	}
	return px, py
}

// Speeds returns the speed of every ball, in order.
func Speeds(balls []world.Entry) []float64 {
	out := make([]float64, len(balls))
	for i, e := range balls {
		out[i] = float64(e.Ball.Velocity.Len())
	}
	return out
}

// Momentum reports |Σ m·v| at the last observed tick.
type Momentum struct {
	name string
	last float64
}

func NewMomentum() *Momentum { return &Momentum{name: "momentum"} }

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(balls []world.Entry, _ physics.StepReport) {
	m.last = math.Hypot(MomentumOf(balls))
}

func (m *Momentum) Value() float64 { return m.last }
func (m *Momentum) Reset()         { m.last = 0 }

// SpeedSpread reports the population standard deviation of ball speeds at
// the last observed tick.
type SpeedSpread struct {
	name string
	last float64
}

func NewSpeedSpread() *SpeedSpread { return &SpeedSpread{name: "speed_spread"} }

func (s *SpeedSpread) Name() string { return s.name }

func (s *SpeedSpread) Observe(balls []world.Entry, _ physics.StepReport) {
	if len(balls) == 0 {
		s.last = 0
		return
	}
	s.last = stat.PopStdDev(Speeds(balls), nil)
}

func (s *SpeedSpread) Value() float64 { return s.last }
func (s *SpeedSpread) Reset()         { s.last = 0 }
