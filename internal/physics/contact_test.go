package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/world"
)

var _ = Describe("Dedup", func() {
	a := world.ID{Index: 1, Gen: 1}
	b := world.ID{Index: 2, Gen: 1}
	c := world.ID{Index: 3, Gen: 1}

	It("collapses mirrored pair reports", func() {
		out := physics.Dedup([]physics.Contact{physics.BallHit(a, b), physics.BallHit(b, a)})
		Expect(out).To(Equal([]physics.Contact{physics.BallHit(a, b)}))
	})

	It("keeps one contact per ball", func() {
		in := []physics.Contact{
			physics.BallHit(a, b),
			physics.BallHit(a, c),
			physics.WallHit(a, physics.East),
			physics.BallHit(b, a),
			physics.WallHit(b, physics.North),
			physics.BallHit(c, a),
			physics.WallHit(c, physics.South),
		}
		out := physics.Dedup(in)
		Expect(out).To(Equal([]physics.Contact{
			physics.BallHit(a, b),
			physics.WallHit(c, physics.South),
		}))
	})

	It("does not merge wall contacts of different balls", func() {
		in := []physics.Contact{
			physics.WallHit(a, physics.East),
			physics.WallHit(b, physics.East),
			physics.WallHit(a, physics.East),
		}
		Expect(physics.Dedup(in)).To(HaveLen(2))
	})

	It("drops self contacts", func() {
		Expect(physics.Dedup([]physics.Contact{physics.BallHit(a, a)})).To(BeEmpty())
	})
})

var _ = Describe("SortContacts", func() {
	It("orders by subject with ball contacts before walls", func() {
		a := world.ID{Index: 1, Gen: 1}
		b := world.ID{Index: 2, Gen: 4}
		cs := []physics.Contact{
			physics.WallHit(b, physics.West),
			physics.WallHit(a, physics.North),
			physics.BallHit(b, a),
			physics.BallHit(a, b),
		}
		physics.SortContacts(cs)
		Expect(cs).To(Equal([]physics.Contact{
			physics.BallHit(a, b),
			physics.WallHit(a, physics.North),
			physics.BallHit(b, a),
			physics.WallHit(b, physics.West),
		}))
	})
})
