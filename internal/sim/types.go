package sim

import (
	"fmt"
	"time"

	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
)

// Phase is the lifecycle state of a Simulation.
type Phase int

const (
	Setup Phase = iota
	Simulate
	Pause
	Stop
)

func (p Phase) String() string {
	switch p {
	case Setup:
		return "setup"
	case Simulate:
		return "simulate"
	case Pause:
		return "pause"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// CanTransition reports whether p may move to next. Any phase may reset to
// Setup or end in Stop; Setup leads to Simulate, which toggles with Pause.
func (p Phase) CanTransition(next Phase) bool {
	switch next {
	case Setup, Stop:
		return true
	case Simulate:
		return p == Setup || p == Pause
	case Pause:
		return p == Simulate
	}
	return false
}

// Observer is called after every simulated tick with a snapshot of the
// live balls.
type Observer interface {
	OnTick(tick int, balls []world.Entry, report physics.StepReport)
}

type ObserverFunc func(tick int, balls []world.Entry, report physics.StepReport)

func (f ObserverFunc) OnTick(tick int, balls []world.Entry, report physics.StepReport) {
	f(tick, balls, report)
}

// RunConfig sizes a headless run. Dt is the tick length in ticks; the
// engine treats velocity as displacement per tick.
type RunConfig struct {
	Ticks int
	Dt    float32
}

func (c RunConfig) validate() error {
	if c.Ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative, got %d", ErrInvalidConfig, c.Ticks)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	return nil
}

// Result is the record of one headless run. The series hold one sample per
// simulated tick.
type Result struct {
	Seed     uint64
	Pack     physics.PackReport
	Ticks    int
	Energy   []float64
	Momentum []float64
	Contacts []int
	Balls    []int
	Metrics  map[string]float64
	Final    []world.Entry
	Elapsed  time.Duration
}

// TicksPerSecond is the wall-clock tick throughput of the run.
func (r *Result) TicksPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ticks) / r.Elapsed.Seconds()
}
