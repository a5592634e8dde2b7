package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/world"
)

// SVGOptions controls BallsToSVG output.
type SVGOptions struct {
	// Scale is the number of SVG pixels per world unit.
	Scale      float64
	Background string
	Stroke     string
	// Velocity draws each velocity as a line this many ticks long. Zero
	// disables it.
	Velocity float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Scale: 1, Background: "#0a0a0a", Stroke: "#00ffff"}
}

// BallsToSVG renders the bounds rectangle and every ball as a circle. World
// y grows upward, so it is flipped into SVG coordinates. Heavier balls get
// a more opaque fill.
func BallsToSVG(balls []world.Entry, bounds geom.Bounds, opts SVGOptions) string {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	width := float64(bounds.Width()) * opts.Scale
	height := float64(bounds.Height()) * opts.Scale

	var maxMass uint32 = 1
	for _, e := range balls {
		maxMass = max(maxMass, e.Ball.Mass)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g stroke="%s" fill="%s">
`, width, height, width, height, opts.Background, opts.Stroke, opts.Stroke)

	for _, e := range balls {
		b := e.Ball
		cx := float64(b.Position.X()-bounds.Min[0]) * opts.Scale
		cy := float64(bounds.Max[1]-b.Position.Y()) * opts.Scale
		r := float64(b.Radius) * opts.Scale
		opacity := 0.15 + 0.6*float64(b.Mass)/float64(maxMass)
		fmt.Fprintf(&sb, `<circle id="b%s" cx="%.2f" cy="%.2f" r="%.2f" fill-opacity="%.2f"/>
`, e.ID, cx, cy, r, opacity)

		if opts.Velocity > 0 {
			tx := cx + float64(b.Velocity[0])*opts.Velocity*opts.Scale
			ty := cy - float64(b.Velocity[1])*opts.Velocity*opts.Scale
			fmt.Fprintf(&sb, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>
`, cx, cy, tx, ty)
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// WriteSVG writes BallsToSVG output to w.
func WriteSVG(w io.Writer, balls []world.Entry, bounds geom.Bounds, opts SVGOptions) error {
	_, err := io.WriteString(w, BallsToSVG(balls, bounds, opts))
	return err
}
