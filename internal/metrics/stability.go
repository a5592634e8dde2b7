package metrics

import (
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
)

// Stability is the fraction of observed ticks in which every ball had a
// finite state and a speed at most threshold.
type Stability struct {
	name       string
	threshold  float32
	violations int
	samples    int
}

func NewStability(threshold float32) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(balls []world.Entry, _ physics.StepReport) {
	s.samples++
	for _, e := range balls {
		b := e.Ball
		if !geom.Finite(b.Pos()) || !geom.Finite(b.Velocity) || b.Velocity.Len() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
