package physics

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/world"
	"golang.org/x/exp/rand"
)

const (
	DefaultRelaxBudget  = 100 * time.Millisecond
	DefaultStepDelta    = time.Second / 60
	DefaultImpulseLimit = 10000
	DefaultNoise        = 1.0

	// minImpulseDistSq floors the squared pair distance in the impulse
	// magnitude; minOriginDistSq floors |pos|² so a ball at the origin gets a
	// finite push.
	minImpulseDistSq = 0.01
	minOriginDistSq  = 1.0

	budgetSlack = time.Microsecond
)

// PackOptions tunes the packing engine.
type PackOptions struct {
	// RelaxBudget is the simulated time relaxation may spend.
	RelaxBudget time.Duration
	// StepDelta is the simulated time one relaxation step consumes.
	StepDelta time.Duration
	// ImpulseLimit caps the accumulated impulse length per step.
	ImpulseLimit float32
	// Noise is the half-width of the uniform jitter added to every
	// accumulated impulse.
	Noise float32
}

func DefaultPackOptions() PackOptions {
	return PackOptions{
		RelaxBudget:  DefaultRelaxBudget,
		StepDelta:    DefaultStepDelta,
		ImpulseLimit: DefaultImpulseLimit,
		Noise:        DefaultNoise,
	}
}

// MaxRelaxSteps is the number of whole relaxation steps that fit in the
// budget, at least one. A microsecond of slack absorbs the truncation in
// step lengths like time.Second/60.
func (o PackOptions) MaxRelaxSteps() int {
	step := o.StepDelta
	if step <= 0 {
		step = DefaultStepDelta
	}
	n := int((o.RelaxBudget + budgetSlack) / step)
	if n < 1 {
		n = 1
	}
	return n
}

// PackReport summarizes one Pack call.
type PackReport struct {
	Initial       int
	Survivors     int
	Deleted       int
	RelaxSteps    int
	ResolvePasses int
	// Converged is true when relaxation alone removed every overlap.
	Converged bool
}

func (r PackReport) String() string {
	return fmt.Sprintf("%d/%d balls kept, %d deleted, %d relax steps, %d resolve passes, converged=%t",
		r.Survivors, r.Initial, r.Deleted, r.RelaxSteps, r.ResolvePasses, r.Converged)
}

// Packer removes initial overlaps from a freshly scattered world.
type Packer struct {
	opts PackOptions
	rng  *rand.Rand
	log  *log.Logger
}

// NewPacker returns a packer drawing jitter from rng. A nil logger
// discards output.
func NewPacker(opts PackOptions, rng *rand.Rand, logger *log.Logger) *Packer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return &Packer{opts: opts, rng: rng, log: logger}
}

// Pack relaxes overlaps and then deletes balls until no two balls in w
// overlap. It blocks until done.
func (p *Packer) Pack(w *world.World, bounds geom.Bounds) PackReport {
	rep := PackReport{Initial: w.Len()}
	rep.RelaxSteps, rep.Converged = p.relax(w, bounds)
	rep.ResolvePasses, rep.Deleted = p.resolve(w)
	rep.Survivors = w.Len()

	p.log.Info("packed balls",
		"bounds", bounds,
		"initial", rep.Initial,
		"survivors", rep.Survivors,
		"deleted", rep.Deleted,
		"relax_steps", rep.RelaxSteps,
		"converged", rep.Converged,
	)
	return rep
}

// relax runs the time-boxed repulsion loop. It returns the number of steps
// taken and whether a pass found no contacts.
func (p *Packer) relax(w *world.World, bounds geom.Bounds) (int, bool) {
	maxSteps := p.opts.MaxRelaxSteps()
	impulses := make(map[world.ID]mgl32.Vec2)

	for step := 1; step <= maxSteps; step++ {
		for id, imp := range impulses {
			w.Modify(id, func(b *world.Ball) {
				b.SetPos(bounds.ClampCircle(b.Pos().Add(imp), float32(b.Radius)))
			})
		}
		clear(impulses)

		snap := w.Snapshot()
		pairs := overlapPairs(snap, w.Workers(), false)
		if len(pairs) == 0 {
			p.log.Debug("relaxation converged", "step", step)
			return step, true
		}

		for _, pr := range pairs {
			a, b := snap[pr[0]], snap[pr[1]]
			acc := impulses[a.ID].Add(p.repulsion(a.Ball.Pos(), b.Ball.Pos()))
			impulses[a.ID] = p.jitter().Add(geom.ClampLength(acc, p.opts.ImpulseLimit))
		}
		p.log.Debug("relaxation step", "step", step, "contacts", len(pairs))
	}
	return maxSteps, false
}

// repulsion is the impulse on a ball at pa for an overlapping ball at pb.
// It points from pa toward pb.
func (p *Packer) repulsion(pa, pb mgl32.Vec2) mgl32.Vec2 {
	originSq := geom.LengthSquared(pa)
	if originSq < minOriginDistSq {
		originSq = minOriginDistSq
	}
	distSq := geom.DistanceSquared(pa, pb)
	if distSq < minImpulseDistSq {
		distSq = minImpulseDistSq
	}
	return geom.NormalizeOrZero(pb.Sub(pa)).Mul(1 / originSq * distSq)
}

func (p *Packer) jitter() mgl32.Vec2 {
	n := p.opts.Noise
	return mgl32.Vec2{
		(p.rng.Float32()*2 - 1) * n,
		(p.rng.Float32()*2 - 1) * n,
	}
}

// resolve deletes the second ball of every overlapping pair whose members
// are both still uncleared, pass after pass, until a pass finds nothing.
// Every pass removes at least one ball, so it ends after at most n passes.
func (p *Packer) resolve(w *world.World) (passes, deleted int) {
	for {
		passes++
		snap := w.Snapshot()
		pairs := overlapPairs(snap, w.Workers(), true)
		if len(pairs) == 0 {
			return passes, deleted
		}

		cleared := make(map[int]bool, len(pairs))
		pending := make([]world.ID, 0, len(pairs))
		for _, pr := range pairs {
			if cleared[pr[0]] || cleared[pr[1]] {
				continue
			}
			cleared[pr[1]] = true
			pending = append(pending, snap[pr[1]].ID)
		}

		n := w.DespawnAll(pending)
		deleted += n
		p.log.Debug("cleared overlapping balls", "pass", passes, "overlaps", len(pairs), "deleted", n)
	}
}

// Scatter moves every ball to a uniformly random position whose circle fits
// in bounds. Balls too large for an axis are centered on it.
func Scatter(w *world.World, bounds geom.Bounds, rng *rand.Rand) {
	for _, e := range w.Snapshot() {
		lo, hi := bounds.Inset(float32(e.Ball.Radius))
		b := e.Ball
		b.SetPos(mgl32.Vec2{uniform(rng, lo[0], hi[0]), uniform(rng, lo[1], hi[1])})
		w.Set(e.ID, b)
	}
}

func uniform(rng *rand.Rand, lo, hi float32) float32 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + rng.Float32()*(hi-lo)
}
