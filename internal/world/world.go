// Package world is the entity store for balls: an arena of records addressed
// by generation-checked IDs.
//
// Slots are reused after a despawn; every reuse bumps the slot generation so
// that IDs held across a despawn stop resolving. All methods are safe for
// concurrent use. Reads take a shared lock, mutations an exclusive one.
package world

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawLayer is the z coordinate every ball is kept at.
const DrawLayer float32 = 1

// ID addresses a ball. The zero ID never resolves.
type ID struct {
	Index uint32
	Gen   uint32
}

func (id ID) String() string { return fmt.Sprintf("%dv%d", id.Index, id.Gen) }

// Ball is one simulated particle.
type Ball struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec2
	Radius   uint32
	Mass     uint32
}

// Pos returns the ball center in the plane.
func (b Ball) Pos() mgl32.Vec2 { return b.Position.Vec2() }

// SetPos moves the ball center, keeping the draw layer.
func (b *Ball) SetPos(p mgl32.Vec2) { b.Position = p.Vec3(DrawLayer) }

// Entry pairs a ball with its ID.
type Entry struct {
	ID   ID
	Ball Ball
}

type slot struct {
	ball  Ball
	gen   uint32
	alive bool
}

// World owns every Ball record.
type World struct {
	mu      sync.RWMutex
	slots   []slot
	free    []uint32
	alive   int
	workers int
}

// New returns an empty world. workers bounds the fan-out of ParEach; zero
// means GOMAXPROCS.
func New(workers int) *World {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &World{workers: workers}
}

// Workers returns the fan-out used for parallel iteration.
func (w *World) Workers() int { return w.workers }

// Spawn stores b and returns its new ID.
func (w *World) Spawn(b Ball) ID {
	w.mu.Lock()
	defer w.mu.Unlock()

	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.slots = append(w.slots, slot{})
		idx = uint32(len(w.slots) - 1)
	}

	s := &w.slots[idx]
	s.gen++
	s.ball = b
	s.alive = true
	w.alive++
	return ID{Index: idx, Gen: s.gen}
}

// lookup returns the live slot for id. Callers hold the lock.
func (w *World) lookup(id ID) *slot {
	if int(id.Index) >= len(w.slots) {
		return nil
	}
	s := &w.slots[id.Index]
	if !s.alive || s.gen != id.Gen {
		return nil
	}
	return s
}

func (w *World) Contains(id ID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lookup(id) != nil
}

func (w *World) Get(id ID) (Ball, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := w.lookup(id)
	if s == nil {
		return Ball{}, false
	}
	return s.ball, true
}

// Set replaces the record for id. It reports false for stale IDs.
func (w *World) Set(id ID, b Ball) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.lookup(id)
	if s == nil {
		return false
	}
	s.ball = b
	return true
}

// Modify runs fn on the record for id inside the exclusive section.
func (w *World) Modify(id ID, fn func(b *Ball)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.lookup(id)
	if s == nil {
		return false
	}
	fn(&s.ball)
	return true
}

// ModifyPair runs fn on two distinct records inside one exclusive section.
func (w *World) ModifyPair(a, b ID, fn func(a, b *Ball)) bool {
	if a == b {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	sa, sb := w.lookup(a), w.lookup(b)
	if sa == nil || sb == nil {
		return false
	}
	fn(&sa.ball, &sb.ball)
	return true
}

// Despawn removes id. It reports false when id was already gone.
func (w *World) Despawn(id ID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.despawn(id)
}

// DespawnAll removes every listed ID in one exclusive section and returns
// how many were live.
func (w *World) DespawnAll(ids []ID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, id := range ids {
		if w.despawn(id) {
			n++
		}
	}
	return n
}

func (w *World) despawn(id ID) bool {
	s := w.lookup(id)
	if s == nil {
		return false
	}
	s.alive = false
	s.ball = Ball{}
	w.free = append(w.free, id.Index)
	w.alive--
	return true
}

// Clear despawns everything. Generations survive so old IDs stay stale.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.slots {
		if w.slots[i].alive {
			w.slots[i].alive = false
			w.slots[i].ball = Ball{}
			w.free = append(w.free, uint32(i))
		}
	}
	w.alive = 0
}

func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.alive
}

// Snapshot copies every live ball in slot order.
func (w *World) Snapshot() []Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entry, 0, w.alive)
	for i := range w.slots {
		s := &w.slots[i]
		if s.alive {
			out = append(out, Entry{ID: ID{Index: uint32(i), Gen: s.gen}, Ball: s.ball})
		}
	}
	return out
}

// ParEach runs fn on every live ball in parallel. Each slot is visited by
// exactly one goroutine, so fn may mutate its own ball freely but must not
// touch the world.
func (w *World) ParEach(fn func(id ID, b *Ball)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.slots)
	if n == 0 {
		return
	}
	parallel.WithNumGoroutines(w.workers).For(n, func(i int) {
		s := &w.slots[i]
		if s.alive {
			fn(ID{Index: uint32(i), Gen: s.gen}, &s.ball)
		}
	})
}
