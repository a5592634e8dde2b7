package metrics

import (
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
)

// ContactRate is the mean number of resolved contacts per tick.
type ContactRate struct {
	name    string
	sum     float64
	samples int
}

func NewContactRate() *ContactRate {
	return &ContactRate{name: "contact_rate"}
}

func (c *ContactRate) Name() string { return c.name }

func (c *ContactRate) Observe(_ []world.Entry, report physics.StepReport) {
	c.sum += float64(report.Resolved)
	c.samples++
}

func (c *ContactRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ContactRate) Reset() {
	c.sum = 0
	c.samples = 0
}

// Population reports the live ball count at the last observed tick.
type Population struct {
	name string
	last int
}

func NewPopulation() *Population { return &Population{name: "population"} }

func (p *Population) Name() string { return p.name }

func (p *Population) Observe(balls []world.Entry, _ physics.StepReport) {
	p.last = len(balls)
}

func (p *Population) Value() float64 { return float64(p.last) }
func (p *Population) Reset()         { p.last = 0 }
