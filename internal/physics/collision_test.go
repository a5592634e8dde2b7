package physics_test

import (
	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
	"golang.org/x/exp/rand"
)

var _ = Describe("Collider", func() {
	var (
		w      *world.World
		c      *physics.Collider
		bounds geom.Bounds
	)

	BeforeEach(func() {
		w = world.New(4)
		c = physics.NewCollider(physics.DefaultCollideOptions(), nil)
		bounds = geom.NewBounds(200, 200)
	})

	Describe("walls", func() {
		It("bounces off the east wall on the tick after crossing it", func() {
			id := w.Spawn(moving(86, 0, 5, 0, 10, 5))

			c.Step(w, bounds, 1)
			b := mustGet(w, id)
			Expect(b.Pos()[0]).To(BeNumerically(">", 90))
			Expect(b.Velocity).To(Equal(mgl32.Vec2{5, 0}))

			rep := c.Step(w, bounds, 1)
			Expect(rep.WallHits).To(Equal(1))
			Expect(mustGet(w, id).Velocity).To(Equal(mgl32.Vec2{-5, 0}))
		})

		It("does not re-trigger the wall once moving away", func() {
			id := w.Spawn(moving(86, 0, 5, 0, 10, 5))
			c.Step(w, bounds, 1)
			c.Step(w, bounds, 1)

			rep := c.Step(w, bounds, 1)
			Expect(rep.WallHits).To(BeZero())
			Expect(mustGet(w, id).Velocity).To(Equal(mgl32.Vec2{-5, 0}))
		})

		It("checks walls east, west, south, north", func() {
			corner := ball(95, 95, 10, 1)
			d, ok := physics.WallAt(corner, bounds)
			Expect(ok).To(BeTrue())
			Expect(d).To(Equal(physics.East))

			d, _ = physics.WallAt(ball(-95, -95, 10, 1), bounds)
			Expect(d).To(Equal(physics.West))

			d, _ = physics.WallAt(ball(0, -95, 10, 1), bounds)
			Expect(d).To(Equal(physics.South))

			d, _ = physics.WallAt(ball(0, 95, 10, 1), bounds)
			Expect(d).To(Equal(physics.North))

			_, ok = physics.WallAt(ball(0, 0, 10, 1), bounds)
			Expect(ok).To(BeFalse())
		})

		DescribeTable("reflection flips only the normal component",
			func(d physics.Direction, in, want mgl32.Vec2) {
				got := physics.Reflect(in, d)
				Expect(got).To(Equal(want))
				Expect(physics.Reflect(got, d)).To(Equal(want))
			},
			Entry("north", physics.North, mgl32.Vec2{2, 3}, mgl32.Vec2{2, -3}),
			Entry("south", physics.South, mgl32.Vec2{2, -3}, mgl32.Vec2{2, 3}),
			Entry("east", physics.East, mgl32.Vec2{4, 1}, mgl32.Vec2{-4, 1}),
			Entry("west", physics.West, mgl32.Vec2{-4, 1}, mgl32.Vec2{4, 1}),
			Entry("already leaving", physics.East, mgl32.Vec2{-4, 1}, mgl32.Vec2{-4, 1}),
		)
	})

	Describe("ball collisions", func() {
		It("swaps velocities of equal masses meeting head-on", func() {
			a := moving(0, 0, 1, 0, 10, 5)
			b := moving(15, 0, -1, 0, 10, 5)

			physics.Bounce(&a, &b, physics.DefaultMinDistSq)

			Expect(a.Velocity[0]).To(BeNumerically("~", -1, 1e-5))
			Expect(b.Velocity[0]).To(BeNumerically("~", 1, 1e-5))
			Expect(a.Velocity[1]).To(BeNumerically("~", 0, 1e-5))
			Expect(b.Velocity[1]).To(BeNumerically("~", 0, 1e-5))
		})

		It("pushes the pair apart until they just touch", func() {
			a := ball(0, 0, 10, 5)
			b := ball(15, 0, 10, 5)

			physics.Bounce(&a, &b, physics.DefaultMinDistSq)

			Expect(a.Pos()[0]).To(BeNumerically("~", -2.5, 1e-4))
			Expect(b.Pos()[0]).To(BeNumerically("~", 17.5, 1e-4))
			Expect(geom.DistanceSquared(a.Pos(), b.Pos())).To(BeNumerically("~", 400, 1e-2))
		})

		It("conserves momentum for unequal masses", func() {
			a := moving(0, 0, 3, 1, 10, 2)
			b := moving(12, 9, -1, -2, 8, 7)
			before := a.Velocity.Mul(2).Add(b.Velocity.Mul(7))

			physics.Bounce(&a, &b, physics.DefaultMinDistSq)

			after := a.Velocity.Mul(2).Add(b.Velocity.Mul(7))
			Expect(after.ApproxEqualThreshold(before, 1e-4)).To(BeTrue(), "momentum %v became %v", before, after)
		})

		It("stays finite for coincident centers", func() {
			a := moving(5, 5, 1, 0, 10, 5)
			b := moving(5, 5, -1, 0, 10, 5)

			physics.Bounce(&a, &b, physics.DefaultMinDistSq)

			Expect(geom.Finite(a.Velocity)).To(BeTrue())
			Expect(geom.Finite(a.Pos())).To(BeTrue())
			Expect(geom.Finite(b.Pos())).To(BeTrue())
		})

		It("resolves a mirrored pair report exactly once per tick", func() {
			a := w.Spawn(moving(0, 0, 1, 0, 10, 5))
			b := w.Spawn(moving(15, 0, -1, 0, 10, 5))

			raw := c.Detect(w.Snapshot(), bounds, w.Workers())
			Expect(raw).To(ConsistOf(physics.BallHit(a, b), physics.BallHit(b, a)))

			rep := c.Step(w, bounds, 1)

			Expect(rep.Detected).To(Equal(2))
			Expect(rep.BallHits).To(Equal(1))
			// a second application would swap the velocities back
			Expect(mustGet(w, a).Velocity[0]).To(BeNumerically("~", -1, 1e-5))
			Expect(mustGet(w, b).Velocity[0]).To(BeNumerically("~", 1, 1e-5))
		})

		It("prefers the ball contact over a simultaneous wall contact", func() {
			a := w.Spawn(moving(-95, 0, -1, 0, 10, 5))
			w.Spawn(moving(-80, 0, 0, 0, 10, 5))

			rep := c.Step(w, bounds, 1)

			Expect(rep.BallHits).To(Equal(1))
			Expect(rep.WallHits).To(BeZero())
			Expect(mustGet(w, a).Velocity[0]).To(BeNumerically("<=", 0))
		})
	})

	Describe("integration", func() {
		It("advances positions by velocity times dt", func() {
			id := w.Spawn(moving(0, 0, 2, -3, 5, 1))

			c.Step(w, bounds, 0.5)

			Expect(mustGet(w, id).Pos()).To(Equal(mgl32.Vec2{1, -1.5}))
			Expect(mustGet(w, id).Position.Z()).To(Equal(world.DrawLayer))
		})

		It("clamps balls into bounds that shrank since the last tick", func() {
			id := w.Spawn(ball(90, 90, 10, 1))

			c.Step(w, geom.NewBounds(100, 100), 1)

			b := mustGet(w, id)
			Expect(b.Pos()[0]).To(BeNumerically("<=", 40.1+1e-4))
			Expect(b.Pos()[1]).To(BeNumerically("<=", 40.1+1e-4))
		})

		It("keeps every ball inside the bounds over a long run", func() {
			rng := rand.New(rand.NewSource(3))
			for i := 0; i < 40; i++ {
				b := ball(0, 0, 4+uint32(rng.Intn(8)), 1+uint32(rng.Intn(5)))
				b.Velocity = mgl32.Vec2{rng.Float32()*8 - 4, rng.Float32()*8 - 4}
				w.Spawn(b)
			}
			physics.Scatter(w, bounds, rng)
			physics.NewPacker(physics.DefaultPackOptions(), rng, nil).Pack(w, bounds)

			for tick := 0; tick < 300; tick++ {
				c.Step(w, bounds, 1)
				for _, e := range w.Snapshot() {
					Expect(bounds.ContainsCircle(e.Ball.Pos(), float32(e.Ball.Radius), physics.DefaultClampEpsilon+1e-3)).To(BeTrue(),
						"tick %d: ball %s at %v escaped", tick, e.ID, e.Ball.Pos())
				}
			}
		})
	})
})

var _ = Describe("Resolve", func() {
	It("applies live contacts and reports ones naming missing balls", func() {
		w := world.New(2)
		c := physics.NewCollider(physics.DefaultCollideOptions(), nil)
		a := w.Spawn(moving(0, 0, 3, 0, 10, 5))
		gone := w.Spawn(ball(15, 0, 10, 5))
		Expect(w.Despawn(gone)).To(BeTrue())

		rep, err := c.Resolve(w, []physics.Contact{
			physics.BallHit(a, gone),
			physics.WallHit(a, physics.East),
		})

		Expect(err).To(MatchError(physics.ErrStaleContact))
		Expect(rep.BallHits).To(BeZero())
		Expect(rep.WallHits).To(Equal(1))
		Expect(mustGet(w, a).Velocity).To(Equal(mgl32.Vec2{-3, 0}))
	})

	It("returns no error when every contact is live", func() {
		w := world.New(2)
		c := physics.NewCollider(physics.DefaultCollideOptions(), nil)
		a := w.Spawn(moving(0, 0, 1, 0, 10, 5))
		b := w.Spawn(moving(15, 0, -1, 0, 10, 5))

		rep, err := c.Resolve(w, []physics.Contact{physics.BallHit(a, b)})

		Expect(err).NotTo(HaveOccurred())
		Expect(rep.Resolved).To(Equal(1))
	})
})
