package physics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/world"
)

// Direction names a wall of the bounds rectangle.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ContactKind distinguishes wall contacts from ball contacts.
type ContactKind uint8

const (
	WallContact ContactKind = iota
	BallContact
)

// Contact is one detected overlap of Subject with a wall or another ball.
type Contact struct {
	Subject world.ID
	Kind    ContactKind
	Wall    Direction
	Other   world.ID
}

func WallHit(subject world.ID, d Direction) Contact {
	return Contact{Subject: subject, Kind: WallContact, Wall: d}
}

func BallHit(subject, other world.ID) Contact {
	return Contact{Subject: subject, Kind: BallContact, Other: other}
}

func (c Contact) IsWall() bool { return c.Kind == WallContact }

func (c Contact) String() string {
	if c.IsWall() {
		return fmt.Sprintf("%s->wall(%s)", c.Subject, c.Wall)
	}
	return fmt.Sprintf("%s->ball(%s)", c.Subject, c.Other)
}

// contactList is the shared sink parallel detection appends to.
type contactList struct {
	mu    sync.Mutex
	items []Contact
}

func (l *contactList) add(c Contact) {
	l.mu.Lock()
	l.items = append(l.items, c)
	l.mu.Unlock()
}

// SortContacts puts contacts in canonical order: by subject slot, ball
// contacts before wall contacts, ball contacts by the other ball's slot.
func SortContacts(cs []Contact) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Subject.Index != b.Subject.Index {
			return a.Subject.Index < b.Subject.Index
		}
		if a.Kind != b.Kind {
			return a.Kind == BallContact
		}
		if a.IsWall() {
			return a.Wall < b.Wall
		}
		return a.Other.Index < b.Other.Index
	})
}

// Dedup keeps, in order, each contact none of whose balls were claimed by
// an earlier kept contact. The result holds at most one contact per
// unordered ball pair and at most one contact per ball, so the mirrored
// reports (A, ball B) and (B, ball A) collapse to the first one.
func Dedup(cs []Contact) []Contact {
	claimed := make(map[world.ID]struct{}, len(cs))
	out := make([]Contact, 0, len(cs))
	for _, c := range cs {
		if _, ok := claimed[c.Subject]; ok {
			continue
		}
		if !c.IsWall() {
			if c.Other == c.Subject {
				continue
			}
			if _, ok := claimed[c.Other]; ok {
				continue
			}
			claimed[c.Other] = struct{}{}
		}
		claimed[c.Subject] = struct{}{}
		out = append(out, c)
	}
	return out
}

func overlapping(a, b world.Ball) bool {
	r := float32(a.Radius) + float32(b.Radius)
	return geom.DistanceSquared(a.Pos(), b.Pos()) < r*r
}

// pairList collects overlapping index pairs from a parallel scan.
type pairList struct {
	mu    sync.Mutex
	pairs [][2]int
}

func (l *pairList) add(i, j int) {
	l.mu.Lock()
	l.pairs = append(l.pairs, [2]int{i, j})
	l.mu.Unlock()
}

// overlapPairs returns every overlapping pair of snap as index pairs sorted
// by (i, j). With unordered set only i < j is reported, otherwise both
// orientations are.
func overlapPairs(snap []world.Entry, workers int, unordered bool) [][2]int {
	n := len(snap)
	if n < 2 {
		return nil
	}
	var l pairList
	parallel.WithNumGoroutines(workers).For(n, func(i int) {
		start := 0
		if unordered {
			start = i + 1
		}
		for j := start; j < n; j++ {
			if i == j {
				continue
			}
			if overlapping(snap[i].Ball, snap[j].Ball) {
				l.add(i, j)
			}
		}
	})
	sort.Slice(l.pairs, func(a, b int) bool {
		if l.pairs[a][0] != l.pairs[b][0] {
			return l.pairs[a][0] < l.pairs[b][0]
		}
		return l.pairs[a][1] < l.pairs[b][1]
	})
	return l.pairs
}
