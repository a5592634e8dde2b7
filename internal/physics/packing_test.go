package physics_test

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
	"golang.org/x/exp/rand"
)

var _ = Describe("Packer", func() {
	var (
		w   *world.World
		rng *rand.Rand
		p   *physics.Packer
	)

	BeforeEach(func() {
		w = world.New(4)
		rng = rand.New(rand.NewSource(42))
		p = physics.NewPacker(physics.DefaultPackOptions(), rng, nil)
	})

	spawnRandom := func(n int, minR, maxR uint32, bounds geom.Bounds) {
		for i := 0; i < n; i++ {
			r := minR + uint32(rng.Intn(int(maxR-minR)))
			w.Spawn(ball(0, 0, r, 5))
		}
		physics.Scatter(w, bounds, rng)
	}

	It("separates two stacked balls without deleting either", func() {
		bounds := geom.NewBounds(400, 400)
		a := w.Spawn(ball(0, 0, 10, 5))
		b := w.Spawn(ball(15, 0, 10, 5))

		rep := p.Pack(w, bounds)

		Expect(rep.Survivors).To(Equal(2))
		Expect(rep.Deleted).To(BeZero())
		Expect(rep.Converged).To(BeTrue())
		Expect(geom.DistanceSquared(mustGet(w, a).Pos(), mustGet(w, b).Pos())).To(BeNumerically(">=", 400))
	})

	It("moves each ball of an overlapping pair toward the other", func() {
		bounds := geom.NewBounds(400, 400)
		a := w.Spawn(ball(100, 0, 10, 5))
		b := w.Spawn(ball(110, 0, 10, 5))
		opts := physics.PackOptions{
			RelaxBudget:  20 * time.Millisecond,
			StepDelta:    10 * time.Millisecond,
			ImpulseLimit: physics.DefaultImpulseLimit,
		}
		p = physics.NewPacker(opts, rng, nil)

		rep := p.Pack(w, bounds)

		// one impulse of |d|²/|pos|² = 100/10000 lands before the budget runs out
		Expect(rep.RelaxSteps).To(Equal(2))
		Expect(rep.Converged).To(BeFalse())
		Expect(mustGet(w, a).Pos()[0]).To(BeNumerically("~", 100.01, 1e-3))
		Expect(w.Contains(b)).To(BeFalse())
	})

	It("leaves an already packed world untouched", func() {
		bounds := geom.NewBounds(400, 400)
		a := w.Spawn(ball(-100, 0, 10, 5))
		w.Spawn(ball(100, 0, 10, 5))

		rep := p.Pack(w, bounds)

		Expect(rep.RelaxSteps).To(Equal(1))
		Expect(rep.ResolvePasses).To(Equal(1))
		Expect(mustGet(w, a).Pos()[0]).To(BeNumerically("==", -100))
	})

	It("terminates on an unsatisfiable layout and leaves no overlaps", func() {
		bounds := geom.NewBounds(200, 200)
		spawnRandom(50, 40, 50, bounds)

		rep := p.Pack(w, bounds)

		Expect(rep.Initial).To(Equal(50))
		Expect(rep.Survivors).To(BeNumerically(">=", 1))
		Expect(rep.Survivors + rep.Deleted).To(Equal(50))
		Expect(rep.Converged).To(BeFalse())
		Expect(overlappingPairs(w)).To(BeZero())
	})

	It("keeps every survivor inside the bounds", func() {
		bounds := geom.NewBounds(400, 300)
		spawnRandom(60, 5, 15, bounds)

		p.Pack(w, bounds)

		Expect(overlappingPairs(w)).To(BeZero())
		for _, e := range w.Snapshot() {
			Expect(bounds.ContainsCircle(e.Ball.Pos(), float32(e.Ball.Radius), 1e-3)).To(BeTrue(),
				"ball %s at %v escaped %s", e.ID, e.Ball.Pos(), bounds)
		}
	})

	It("deletes all but one ball when every ball sits on the same spot", func() {
		bounds := geom.NewBounds(100, 100)
		for i := 0; i < 5; i++ {
			w.Spawn(ball(0, 0, 45, 5))
		}
		opts := physics.DefaultPackOptions()
		opts.Noise = 0
		p = physics.NewPacker(opts, rng, nil)

		rep := p.Pack(w, bounds)

		Expect(rep.Survivors).To(Equal(1))
		Expect(rep.Deleted).To(Equal(4))
	})

	It("is deterministic for a fixed seed", func() {
		run := func() []world.Entry {
			w := world.New(4)
			rng := rand.New(rand.NewSource(7))
			bounds := geom.NewBounds(300, 300)
			for i := 0; i < 40; i++ {
				w.Spawn(ball(0, 0, 10+uint32(rng.Intn(10)), 5))
			}
			physics.Scatter(w, bounds, rng)
			physics.NewPacker(physics.DefaultPackOptions(), rng, nil).Pack(w, bounds)
			return w.Snapshot()
		}
		Expect(run()).To(Equal(run()))
	})

	DescribeTable("relaxation step budget",
		func(budget, step time.Duration, want int) {
			opts := physics.PackOptions{RelaxBudget: budget, StepDelta: step}
			Expect(opts.MaxRelaxSteps()).To(Equal(want))
		},
		Entry("default", physics.DefaultRelaxBudget, physics.DefaultStepDelta, 6),
		Entry("exact", 100*time.Millisecond, 10*time.Millisecond, 10),
		Entry("zero budget", time.Duration(0), 10*time.Millisecond, 1),
		Entry("zero step uses default", 100*time.Millisecond, time.Duration(0), 6),
		Entry("partial step is dropped", 100*time.Millisecond, 16*time.Millisecond, 6),
		Entry("budget shorter than a step", 5*time.Millisecond, 10*time.Millisecond, 1),
	)

	It("never spends more simulated time than the budget", func() {
		for _, step := range []time.Duration{time.Second / 60, time.Second / 30, 7 * time.Millisecond, 16 * time.Millisecond} {
			opts := physics.PackOptions{RelaxBudget: physics.DefaultRelaxBudget, StepDelta: step}
			Expect(time.Duration(opts.MaxRelaxSteps()) * step).To(BeNumerically("<=", physics.DefaultRelaxBudget), "step %v", step)
		}
	})
})

var _ = Describe("Scatter", func() {
	It("places each ball fully inside the bounds", func() {
		w := world.New(2)
		rng := rand.New(rand.NewSource(1))
		bounds := geom.NewBounds(120, 80)
		for i := 0; i < 100; i++ {
			w.Spawn(ball(1000, 1000, 10, 1))
		}

		physics.Scatter(w, bounds, rng)

		for _, e := range w.Snapshot() {
			Expect(bounds.ContainsCircle(e.Ball.Pos(), 10, 1e-3)).To(BeTrue())
			Expect(e.Ball.Position.Z()).To(Equal(world.DrawLayer))
		}
	})

	It("centers balls too large for the bounds", func() {
		w := world.New(1)
		id := w.Spawn(ball(30, 30, 80, 1))

		physics.Scatter(w, geom.NewBounds(100, 100), rand.New(rand.NewSource(1)))

		Expect(mustGet(w, id).Pos()).To(Equal(mgl32.Vec2{0, 0}))
	})
})
