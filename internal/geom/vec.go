// Package geom holds the small amount of plane geometry the engines share:
// vector helpers over mgl32, the bounds rectangle and the viewport
// collaborator that supplies it.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DistanceSquared returns |a-b|².
func DistanceSquared(a, b mgl32.Vec2) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

// LengthSquared returns |v|².
func LengthSquared(v mgl32.Vec2) float32 {
	return v.Dot(v)
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v
// is zero or not finite.
func NormalizeOrZero(v mgl32.Vec2) mgl32.Vec2 {
	l := v.Len()
	if l == 0 || !finite(l) {
		return mgl32.Vec2{}
	}
	return v.Mul(1 / l)
}

// ClampLength scales v down so that |v| <= limit.
func ClampLength(v mgl32.Vec2, limit float32) mgl32.Vec2 {
	l := v.Len()
	if l <= limit {
		return v
	}
	if !finite(l) {
		return mgl32.Vec2{}
	}
	return v.Mul(limit / l)
}

// Clamp2 clamps each component of v into [lo, hi]. When lo > hi on an axis
// the midpoint is used.
func Clamp2(v, lo, hi mgl32.Vec2) mgl32.Vec2 {
	var out mgl32.Vec2
	for i := 0; i < 2; i++ {
		if lo[i] > hi[i] {
			out[i] = (lo[i] + hi[i]) / 2
			continue
		}
		out[i] = mgl32.Clamp(v[i], lo[i], hi[i])
	}
	return out
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Finite reports whether both components of v are finite numbers.
func Finite(v mgl32.Vec2) bool {
	return finite(v[0]) && finite(v[1])
}
