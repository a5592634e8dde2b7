package export

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/world"
)

type svgDoc struct {
	Width   string `xml:"width,attr"`
	Circles []struct {
		CX string `xml:"cx,attr"`
		CY string `xml:"cy,attr"`
		R  string `xml:"r,attr"`
	} `xml:"g>circle"`
	Lines []struct{} `xml:"g>line"`
}

func TestBallsToSVG(t *testing.T) {
	balls := []world.Entry{
		{ID: world.ID{Index: 0, Gen: 1}, Ball: world.Ball{Position: mgl32.Vec3{0, 0, 1}, Radius: 10, Mass: 4}},
		{ID: world.ID{Index: 1, Gen: 1}, Ball: world.Ball{Position: mgl32.Vec3{40, 30, 1}, Velocity: mgl32.Vec2{1, 0}, Radius: 5, Mass: 2}},
	}
	bounds := geom.NewBounds(200, 100)

	opts := DefaultSVGOptions()
	opts.Scale = 2
	out := BallsToSVG(balls, bounds, opts)

	var doc svgDoc
	if err := xml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid svg: %v\n%s", err, out)
	}
	if doc.Width != "400" {
		t.Errorf("expected width 400, got %s", doc.Width)
	}
	if len(doc.Circles) != 2 {
		t.Fatalf("expected 2 circles, got %d", len(doc.Circles))
	}

	// (0, 0) is the center; (40, 30) is right of and above it
	c := doc.Circles[0]
	if c.CX != "200.00" || c.CY != "100.00" || c.R != "20.00" {
		t.Errorf("unexpected first circle %+v", c)
	}
	c = doc.Circles[1]
	if c.CX != "280.00" || c.CY != "40.00" {
		t.Errorf("unexpected second circle %+v", c)
	}
	if len(doc.Lines) != 0 {
		t.Error("velocity lines drawn without being asked for")
	}
}

func TestBallsToSVGVelocity(t *testing.T) {
	balls := []world.Entry{{Ball: world.Ball{Velocity: mgl32.Vec2{1, 1}, Radius: 3, Mass: 1}}}
	opts := DefaultSVGOptions()
	opts.Velocity = 5

	var sb strings.Builder
	if err := WriteSVG(&sb, balls, geom.NewBounds(50, 50), opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `<line x1="25.00" y1="25.00" x2="30.00" y2="20.00"/>`) {
		t.Errorf("velocity line missing:\n%s", sb.String())
	}
}
