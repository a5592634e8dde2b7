package sim

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/parzivale/particlesim/internal/config"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/metrics"
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
	"golang.org/x/exp/rand"
)

// Simulation drives one ball world through setup, packing and ticks. All
// methods are safe for concurrent use.
type Simulation struct {
	mu sync.Mutex

	cfg       config.Config
	seed      uint64
	rng       *rand.Rand
	log       *log.Logger
	world     *world.World
	packer    *physics.Packer
	collider  *physics.Collider
	metrics   []metrics.Metric
	observers []Observer

	phase Phase
	tick  int
	pack  physics.PackReport
}

// New validates cfg and returns a simulation in the Setup phase with an
// empty world.
func New(cfg config.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s := &Simulation{
		cfg:   cfg,
		seed:  cfg.Simulation.Seed,
		phase: Setup,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	if len(s.metrics) == 0 {
		s.metrics = metrics.Standard()
	}
	if s.seed == 0 {
		s.seed = uint64(time.Now().UnixNano())
	}

	s.rng = rand.New(rand.NewSource(s.seed))
	s.world = world.New(cfg.Workers)
	s.packer = physics.NewPacker(cfg.PackOptions(), s.rng, s.log.WithPrefix("packer"))
	s.collider = physics.NewCollider(cfg.CollideOptions(), s.log.WithPrefix("collider"))
	return s, nil
}

func (s *Simulation) Seed() uint64 { return s.seed }

// World exposes the underlying store. Mutating it while ticks run is safe
// but bypasses the simulation's bookkeeping.
func (s *Simulation) World() *world.World { return s.world }

func (s *Simulation) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Ticks returns the number of ticks simulated since the last Setup.
func (s *Simulation) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// PackReport returns the report of the last Setup.
func (s *Simulation) PackReport() physics.PackReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pack
}

// Balls returns a snapshot of every live ball in slot order.
func (s *Simulation) Balls() []world.Entry { return s.world.Snapshot() }

// Metrics returns the current value of every metric, keyed by name.
func (s *Simulation) Metrics() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metricValues()
}

func (s *Simulation) metricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Setup clears the world, spawns the configured balls with random radius,
// mass and velocity, scatters them inside the viewport bounds and packs
// them. It leaves the simulation in the Simulate phase. Setup panics with
// ErrNoViewport if vp cannot report bounds.
func (s *Simulation) Setup(vp geom.Viewport) (physics.PackReport, error) {
	bounds := geom.MustBounds(vp)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = Setup
	s.tick = 0
	s.world.Clear()

	sc := s.cfg.Simulation
	for i := 0; i < sc.BallCount; i++ {
		s.world.Spawn(world.Ball{
			Position: mgl32.Vec3{0, 0, world.DrawLayer},
			Velocity: mgl32.Vec2{s.uniform(sc.VelocityRange), s.uniform(sc.VelocityRange)},
			Radius:   s.between(sc.SizeRange),
			Mass:     s.between(sc.MassRange),
		})
	}

	physics.Scatter(s.world, bounds, s.rng)
	s.pack = s.packer.Pack(s.world, bounds)

	for _, m := range s.metrics {
		m.Reset()
	}
	if err := checkFinite(s.world.Snapshot()); err != nil {
		return s.pack, &SimError{Tick: 0, Phase: Setup, Err: err}
	}

	s.phase = Simulate
	s.log.Info("setup complete", "seed", s.seed, "bounds", bounds, "balls", s.pack.Survivors)
	return s.pack, nil
}

func (s *Simulation) between(r config.IntRange) uint32 {
	return uint32(r.Min + s.rng.Intn(r.Max-r.Min))
}

func (s *Simulation) uniform(r config.FloatRange) float32 {
	return float32(r.Min + s.rng.Float64()*(r.Max-r.Min))
}

// Tick advances one tick of length dt and returns the collision report.
// Outside the Simulate phase it does nothing. Bounds are read from vp on
// every call, so the viewport may change between ticks; Tick panics with
// ErrNoViewport if it cannot report them.
func (s *Simulation) Tick(vp geom.Viewport, dt float32) physics.StepReport {
	rep, _, _ := s.step(vp, dt)
	return rep
}

// step runs one tick and reports whether it did. Observers are called
// after the lock is released, so they may call back into s.
func (s *Simulation) step(vp geom.Viewport, dt float32) (physics.StepReport, []world.Entry, bool) {
	rep, tick, balls, ok := s.advance(vp, dt)
	if !ok {
		return rep, nil, false
	}
	for _, o := range s.observers {
		o.OnTick(tick, balls, rep)
	}
	return rep, balls, true
}

func (s *Simulation) advance(vp geom.Viewport, dt float32) (physics.StepReport, int, []world.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Simulate {
		return physics.StepReport{}, s.tick, nil, false
	}
	bounds := geom.MustBounds(vp)

	rep := s.collider.Step(s.world, bounds, dt)
	s.tick++

	balls := s.world.Snapshot()
	for _, m := range s.metrics {
		m.Observe(balls, rep)
	}
	return rep, s.tick, balls, true
}

func (s *Simulation) Pause() error {
	return s.transition(Pause)
}

func (s *Simulation) Resume() error {
	return s.transition(Simulate)
}

// Stop ends the simulation. It is always allowed; only Setup leaves Stop.
func (s *Simulation) Stop() {
	_ = s.transition(Stop)
}

func (s *Simulation) transition(next Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.CanTransition(next) {
		return &SimError{Tick: s.tick, Phase: s.phase, Err: fmt.Errorf("%w: %s to %s", ErrInvalidPhase, s.phase, next)}
	}
	s.log.Debug("phase change", "from", s.phase, "to", next, "tick", s.tick)
	s.phase = next
	return nil
}

// Run sets up the world in vp and simulates rc.Ticks ticks, collecting a
// per-tick series of energy, momentum, contacts and population. It stops
// early when ctx is done or the simulation is stopped, returning the
// partial result with the error. Ticks requested while paused are skipped.
func (s *Simulation) Run(ctx context.Context, vp geom.Viewport, rc RunConfig) (*Result, error) {
	if err := rc.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	pack, err := s.Setup(vp)
	res := &Result{
		Seed:     s.seed,
		Pack:     pack,
		Energy:   make([]float64, 0, rc.Ticks),
		Momentum: make([]float64, 0, rc.Ticks),
		Contacts: make([]int, 0, rc.Ticks),
		Balls:    make([]int, 0, rc.Ticks),
	}
	if err != nil {
		return res, err
	}

	defer func() {
		res.Metrics = s.Metrics()
		res.Final = s.Balls()
		res.Elapsed = time.Since(start)
	}()

	for i := 0; i < rc.Ticks; i++ {
		select {
		case <-ctx.Done():
			return res, &SimError{Tick: i, Phase: s.Phase(), Err: ctx.Err()}
		default:
		}

		rep, balls, ok := s.step(vp, rc.Dt)
		if !ok {
			if s.Phase() == Stop {
				s.log.Info("run stopped", "tick", i)
				return res, nil
			}
			continue
		}

		res.Ticks++
		res.Energy = append(res.Energy, metrics.KineticEnergyOf(balls))
		res.Momentum = append(res.Momentum, math.Hypot(metrics.MomentumOf(balls)))
		res.Contacts = append(res.Contacts, rep.Resolved)
		res.Balls = append(res.Balls, len(balls))

		if err := checkFinite(balls); err != nil {
			return res, &SimError{Tick: i + 1, Phase: Simulate, Err: err}
		}
	}

	s.log.Info("run complete", "ticks", res.Ticks, "balls", len(s.Balls()))
	return res, nil
}

func checkFinite(balls []world.Entry) error {
	for _, e := range balls {
		if !geom.Finite(e.Ball.Pos()) || !geom.Finite(e.Ball.Velocity) {
			return fmt.Errorf("ball %s: %w", e.ID, ErrUnstable)
		}
	}
	return nil
}
