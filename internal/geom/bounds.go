package geom

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoViewport is returned when no viewport can supply bounds. The engines
// cannot run without bounds, so callers treat it as fatal.
var ErrNoViewport = errors.New("geom: no active viewport")

// Bounds is the world-space rectangle balls are confined to.
type Bounds struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

// NewBounds returns the bounds of a width×height rectangle centered on the
// origin.
func NewBounds(width, height float32) Bounds {
	hw, hh := width/2, height/2
	return Bounds{Min: mgl32.Vec2{-hw, -hh}, Max: mgl32.Vec2{hw, hh}}
}

func (b Bounds) Width() float32  { return b.Max[0] - b.Min[0] }
func (b Bounds) Height() float32 { return b.Max[1] - b.Min[1] }

// Valid reports whether the rectangle is finite and has positive area.
func (b Bounds) Valid() bool {
	return Finite(b.Min) && Finite(b.Max) && b.Width() > 0 && b.Height() > 0
}

// Inset returns the rectangle shrunk by margin on every side.
func (b Bounds) Inset(margin float32) (lo, hi mgl32.Vec2) {
	m := mgl32.Vec2{margin, margin}
	return b.Min.Add(m), b.Max.Sub(m)
}

// ClampCircle clamps a circle center so that a circle of the given radius
// stays inside the rectangle.
func (b Bounds) ClampCircle(center mgl32.Vec2, radius float32) mgl32.Vec2 {
	lo, hi := b.Inset(radius)
	return Clamp2(center, lo, hi)
}

// ContainsCircle reports whether the circle lies inside the rectangle with
// tol of slack on every side.
func (b Bounds) ContainsCircle(center mgl32.Vec2, radius, tol float32) bool {
	lo, hi := b.Inset(radius - tol)
	return center[0] >= lo[0] && center[0] <= hi[0] &&
		center[1] >= lo[1] && center[1] <= hi[1]
}

func (b Bounds) String() string {
	return fmt.Sprintf("[(%.1f, %.1f) .. (%.1f, %.1f)]", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}
