package physics_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/world"
)

func TestPhysics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Physics Suite")
}

func ball(x, y float32, radius, mass uint32) world.Ball {
	return world.Ball{Position: mgl32.Vec3{x, y, world.DrawLayer}, Radius: radius, Mass: mass}
}

func moving(x, y, vx, vy float32, radius, mass uint32) world.Ball {
	b := ball(x, y, radius, mass)
	b.Velocity = mgl32.Vec2{vx, vy}
	return b
}

// overlappingPairs counts pairs of live balls whose circles overlap.
func overlappingPairs(w *world.World) int {
	snap := w.Snapshot()
	n := 0
	for i := range snap {
		for j := i + 1; j < len(snap); j++ {
			r := float32(snap[i].Ball.Radius + snap[j].Ball.Radius)
			if geom.DistanceSquared(snap[i].Ball.Pos(), snap[j].Ball.Pos()) < r*r {
				n++
			}
		}
	}
	return n
}

func mustGet(w *world.World, id world.ID) world.Ball {
	b, ok := w.Get(id)
	ExpectWithOffset(1, ok).To(BeTrue(), "ball %s missing", id)
	return b
}
