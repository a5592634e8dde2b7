package physics

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/world"
	"golang.org/x/sync/errgroup"
)

// ErrStaleContact is returned by Resolve for a contact naming a ball that is
// no longer in the store.
var ErrStaleContact = errors.New("physics: contact refers to a missing ball")

const (
	DefaultClampEpsilon = 0.1
	DefaultMinDistSq    = 1.0
)

// CollideOptions tunes the collision engine.
type CollideOptions struct {
	// ClampEpsilon is subtracted from every radius when clamping positions
	// after integration, leaving a ball on a wall strictly past the wall
	// predicate.
	ClampEpsilon float32
	// MinDistSq floors the squared center distance in the elastic response.
	MinDistSq float32
}

func DefaultCollideOptions() CollideOptions {
	return CollideOptions{
		ClampEpsilon: DefaultClampEpsilon,
		MinDistSq:    DefaultMinDistSq,
	}
}

// StepReport summarizes one Step call.
type StepReport struct {
	Detected int
	Resolved int
	WallHits int
	BallHits int
}

// Collider advances the world by one tick.
type Collider struct {
	opts CollideOptions
	log  *log.Logger
}

func NewCollider(opts CollideOptions, logger *log.Logger) *Collider {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Collider{opts: opts, log: logger}
}

// Step detects, deduplicates and resolves contacts, then integrates every
// ball by dt ticks.
func (c *Collider) Step(w *world.World, bounds geom.Bounds, dt float32) StepReport {
	raw := c.Detect(w.Snapshot(), bounds, w.Workers())
	contacts := Dedup(raw)

	rep, err := c.Resolve(w, contacts)
	if err != nil {
		c.log.Error("resolving contacts", "err", err)
	}
	rep.Detected = len(raw)

	c.Integrate(w, bounds, dt)

	if rep.Resolved > 0 {
		c.log.Debug("resolved contacts", "detected", rep.Detected, "walls", rep.WallHits, "balls", rep.BallHits)
	}
	return rep
}

// Detect reports every ball-ball overlap in both orientations and, per ball,
// the first wall it is past in the order east, west, south, north. The
// result is in canonical order.
func (c *Collider) Detect(snap []world.Entry, bounds geom.Bounds, workers int) []Contact {
	n := len(snap)
	if n == 0 {
		return nil
	}
	var l contactList
	parallel.WithNumGoroutines(workers).For(n, func(i int) {
		a := snap[i]
		for j := 0; j < n; j++ {
			if i != j && overlapping(a.Ball, snap[j].Ball) {
				l.add(BallHit(a.ID, snap[j].ID))
			}
		}
		if d, ok := WallAt(a.Ball, bounds); ok {
			l.add(WallHit(a.ID, d))
		}
	})
	SortContacts(l.items)
	return l.items
}

// WallAt returns the first wall b is past, checking east, west, south and
// north in that order.
func WallAt(b world.Ball, bounds geom.Bounds) (Direction, bool) {
	p := b.Pos()
	r := float32(b.Radius)
	switch {
	case p[0] > bounds.Max[0]-r:
		return East, true
	case p[0] < bounds.Min[0]+r:
		return West, true
	case p[1] < bounds.Min[1]+r:
		return South, true
	case p[1] > bounds.Max[1]-r:
		return North, true
	}
	return 0, false
}

// Resolve applies every contact. Contacts are split into chunks handled
// concurrently, but each application is an exclusive section on w. Contacts
// whose balls are gone are skipped and reported as ErrStaleContact once
// every chunk is done.
func (c *Collider) Resolve(w *world.World, contacts []Contact) (StepReport, error) {
	var rep StepReport
	if len(contacts) == 0 {
		return rep, nil
	}

	workers := w.Workers()
	size := (len(contacts) + workers - 1) / workers

	var walls, balls atomic.Int64
	var g errgroup.Group
	for start := 0; start < len(contacts); start += size {
		chunk := contacts[start:min(start+size, len(contacts))]
		g.Go(func() error {
			var stale []Contact
			for _, ct := range chunk {
				if ct.IsWall() {
					if w.Modify(ct.Subject, func(b *world.Ball) { b.Velocity = Reflect(b.Velocity, ct.Wall) }) {
						walls.Add(1)
					} else {
						stale = append(stale, ct)
					}
					continue
				}
				if w.ModifyPair(ct.Subject, ct.Other, func(a, b *world.Ball) { Bounce(a, b, c.opts.MinDistSq) }) {
					balls.Add(1)
				} else {
					stale = append(stale, ct)
				}
			}
			if len(stale) > 0 {
				return fmt.Errorf("%w: %v", ErrStaleContact, stale)
			}
			return nil
		})
	}
	err := g.Wait()

	rep.WallHits = int(walls.Load())
	rep.BallHits = int(balls.Load())
	rep.Resolved = rep.WallHits + rep.BallHits
	return rep, err
}

// Integrate moves every ball by vel*dt and clamps it inside bounds, less
// ClampEpsilon of slack.
func (c *Collider) Integrate(w *world.World, bounds geom.Bounds, dt float32) {
	eps := c.opts.ClampEpsilon
	w.ParEach(func(_ world.ID, b *world.Ball) {
		next := b.Pos().Add(b.Velocity.Mul(dt))
		b.SetPos(bounds.ClampCircle(next, float32(b.Radius)-eps))
	})
}

// Reflect points the velocity component normal to wall d away from it and
// leaves the tangential component alone.
func Reflect(v mgl32.Vec2, d Direction) mgl32.Vec2 {
	switch d {
	case North:
		v[1] = -abs(v[1])
	case South:
		v[1] = abs(v[1])
	case East:
		v[0] = -abs(v[0])
	case West:
		v[0] = abs(v[0])
	}
	return v
}

// Bounce applies the mass-weighted elastic response to a and b, then pushes
// them apart along the line of centers so they no longer overlap. Both new
// velocities are computed from the velocities on entry.
func Bounce(a, b *world.Ball, minDistSq float32) {
	pa, pb := a.Pos(), b.Pos()
	va, vb := a.Velocity, b.Velocity
	ma, mb := float32(a.Mass), float32(b.Mass)
	ra, rb := float32(a.Radius), float32(b.Radius)

	distSq := geom.DistanceSquared(pa, pb)
	if distSq < minDistSq {
		distSq = minDistSq
	}

	normalA := pa.Sub(pb)
	normalB := pb.Sub(pa)

	scalarA := 2 * mb / (ma + mb)
	scalarB := 2 * ma / (ma + mb)

	projA := va.Sub(vb).Dot(normalA)
	projB := vb.Sub(va).Dot(normalB)

	a.Velocity = va.Sub(normalA.Mul(scalarA * projA / distSq))
	b.Velocity = vb.Sub(normalB.Mul(scalarB * projB / distSq))

	a.SetPos(pa.Add(geom.NormalizeOrZero(normalA).Mul(ra - normalA.Len()*(ra/(ra+rb)))))
	b.SetPos(pb.Add(geom.NormalizeOrZero(normalB).Mul(rb - normalB.Len()*(rb/(ra+rb)))))
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
