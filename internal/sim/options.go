package sim

import (
	"github.com/charmbracelet/log"
	"github.com/parzivale/particlesim/internal/metrics"
)

type Option func(*Simulation)

// WithLogger sets the logger shared with the packer and collider.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithSeed overrides the configured seed. Zero still means clock seeded.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.seed = seed }
}

// WithMetric adds m to the metrics observed every tick. Without any, the
// simulation observes metrics.Standard.
func WithMetric(m metrics.Metric) Option {
	return func(s *Simulation) { s.metrics = append(s.metrics, m) }
}

func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}
