package geom

import (
	"errors"
	"fmt"
)

// Viewport supplies the current world bounds. Implementations may return a
// different rectangle on every call, for example after a window resize.
type Viewport interface {
	Bounds() (Bounds, error)
}

// FixedViewport always reports the same rectangle.
type FixedViewport struct {
	Rect Bounds
}

func (v FixedViewport) Bounds() (Bounds, error) {
	if !v.Rect.Valid() {
		return Bounds{}, fmt.Errorf("%w: invalid rectangle %s", ErrNoViewport, v.Rect)
	}
	return v.Rect, nil
}

// ViewportFunc adapts a function to Viewport.
type ViewportFunc func() (Bounds, error)

func (f ViewportFunc) Bounds() (Bounds, error) { return f() }

// MustBounds asks vp for the current bounds and panics when none are
// available.
func MustBounds(vp Viewport) Bounds {
	if vp == nil {
		panic(ErrNoViewport)
	}
	b, err := vp.Bounds()
	if err != nil {
		if !errors.Is(err, ErrNoViewport) {
			err = fmt.Errorf("%w: %w", ErrNoViewport, err)
		}
		panic(err)
	}
	if !b.Valid() {
		panic(fmt.Errorf("%w: invalid rectangle %s", ErrNoViewport, b))
	}
	return b
}
