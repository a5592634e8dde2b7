package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/parzivale/particlesim/internal/metrics"
	"github.com/parzivale/particlesim/internal/physics"
	"github.com/parzivale/particlesim/internal/sim"
	"github.com/parzivale/particlesim/internal/world"
)

const (
	historyCapacity = 600
	minCanvasCols   = 10
	minCanvasRows   = 5
	// chrome is the horizontal space taken by the panel, its border and
	// the canvas padding.
	chrome = panelWidth + 1 + 2
)

// LiveOptions tunes the live view.
type LiveOptions struct {
	// Scale is the number of world units per braille dot.
	Scale float32
	// Dt is passed to every simulation tick.
	Dt    float32
	FPS   int
	Theme string
}

func DefaultLiveOptions() LiveOptions {
	return LiveOptions{Scale: 2, Dt: 1, FPS: 60, Theme: ThemeCyberpunk.Name}
}

type TickMsg time.Time

func tick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// screenViewport maps the canvas onto world bounds centered at the origin.
// Its bounds follow the terminal size.
type screenViewport struct {
	bounds geom.Bounds
	scale  float32
}

func (v *screenViewport) Bounds() (geom.Bounds, error) {
	if !v.bounds.Valid() {
		return geom.Bounds{}, fmt.Errorf("%w: terminal size unknown", geom.ErrNoViewport)
	}
	return v.bounds, nil
}

func (v *screenViewport) fit(c *Canvas) {
	w, h := c.Dots()
	v.bounds = geom.NewBounds(float32(w)*v.scale, float32(h)*v.scale)
}

// project maps a world point to canvas dots; world y grows upward.
func (v *screenViewport) project(p mgl32.Vec2) (int, int) {
	x := (p[0] - v.bounds.Min[0]) / v.scale
	y := (v.bounds.Max[1] - p[1]) / v.scale
	return int(x), int(y)
}

// Model is the bubbletea model of the live view. Window size messages
// define the world bounds; the first one triggers setup.
type Model struct {
	sim    *sim.Simulation
	opts   LiveOptions
	vp     *screenViewport
	canvas *Canvas
	theme  Theme
	styles styles

	ready    bool
	vectors  bool
	showHelp bool
	err      error

	balls    []world.Entry
	pack     physics.PackReport
	last     physics.StepReport
	energy   []float64
	contacts []float64
}

func NewModel(s *sim.Simulation, opts LiveOptions) Model {
	def := DefaultLiveOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Dt <= 0 {
		opts.Dt = def.Dt
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	theme := GetTheme(opts.Theme)
	return Model{
		sim:      s,
		opts:     opts,
		vp:       &screenViewport{scale: opts.Scale},
		canvas:   NewCanvas(minCanvasCols, minCanvasRows),
		theme:    theme,
		styles:   newStyles(theme),
		energy:   make([]float64, 0, historyCapacity),
		contacts: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick(m.opts.FPS)
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if !m.ready {
			m.ready = true
			m.setup()
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sim.Stop()
			return m, tea.Quit
		case " ":
			m.togglePause()
		case "r":
			if m.ready {
				m.setup()
			}
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "v":
			m.vectors = !m.vectors
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.ready && m.sim.Phase() == sim.Simulate {
			m.step()
		}
		return m, tick(m.opts.FPS)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	cols := max(width-chrome, minCanvasCols)
	rows := max(height-1, minCanvasRows)
	m.canvas.Resize(cols, rows)
	m.vp.fit(m.canvas)
}

func (m *Model) setup() {
	m.pack, m.err = m.sim.Setup(m.vp)
	m.last = physics.StepReport{}
	m.energy = m.energy[:0]
	m.contacts = m.contacts[:0]
	m.balls = m.sim.Balls()
	m.energy = append(m.energy, metrics.KineticEnergyOf(m.balls))
}

func (m *Model) togglePause() {
	switch m.sim.Phase() {
	case sim.Simulate:
		m.err = m.sim.Pause()
	case sim.Pause:
		m.err = m.sim.Resume()
	}
}

// step advances one tick and records the history series.
func (m *Model) step() {
	m.last = m.sim.Tick(m.vp, m.opts.Dt)
	m.balls = m.sim.Balls()
	m.energy = appendCapped(m.energy, metrics.KineticEnergyOf(m.balls))
	m.contacts = appendCapped(m.contacts, float64(m.last.Resolved))
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) >= historyCapacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

// draw renders every ball as a circle, and its velocity when enabled.
func (m *Model) draw() {
	m.canvas.Clear()
	for _, e := range m.balls {
		b := e.Ball
		x, y := m.vp.project(b.Pos())
		r := int(math.Round(float64(float32(b.Radius) / m.vp.scale)))
		m.canvas.DrawCircle(x, y, r)
		if m.vectors {
			tip := b.Pos().Add(b.Velocity.Mul(8))
			tx, ty := m.vp.project(tip)
			m.canvas.DrawLine(x, y, tx, ty)
		}
	}
}

func (m Model) status() string {
	switch m.sim.Phase() {
	case sim.Simulate:
		return m.styles.running.Render("RUNNING")
	case sim.Pause:
		return m.styles.paused.Render("PAUSED")
	case sim.Stop:
		return m.styles.stopped.Render("STOPPED")
	}
	return m.styles.paused.Render("SETUP")
}

func (m Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

// View renders the canvas next to the stats panel.
func (m Model) View() string {
	if !m.ready {
		return "waiting for terminal size..."
	}
	m.draw()

	var s strings.Builder
	s.WriteString(m.styles.header.Render("PARTICLESIM") + "\n")
	s.WriteString(m.status() + "\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	px, py := metrics.MomentumOf(m.balls)
	energy := 0.0
	if n := len(m.energy); n > 0 {
		energy = m.energy[n-1]
	}
	s.WriteString(m.row("Tick", fmt.Sprintf("%d", m.sim.Ticks())))
	s.WriteString(m.row("Balls", fmt.Sprintf("%d", len(m.balls))))
	s.WriteString(m.row("Energy", fmt.Sprintf("%.2f", energy)))
	s.WriteString(m.row("Momentum", fmt.Sprintf("%.2f", math.Hypot(px, py))))
	s.WriteString(m.row("Contacts", fmt.Sprintf("%d walls, %d pairs", m.last.WallHits, m.last.BallHits)))
	s.WriteString(m.row("Seed", fmt.Sprintf("%d", m.sim.Seed())))
	s.WriteString(m.row("Bounds", fmt.Sprintf("%.0fx%.0f", m.vp.bounds.Width(), m.vp.bounds.Height())))

	kept := 1.0
	if m.pack.Initial > 0 {
		kept = float64(m.pack.Survivors) / float64(m.pack.Initial)
	}
	s.WriteString(m.row("Packed", m.styles.ProgressBar(kept, 20)))
	s.WriteString(m.row("Activity", Sparkline(m.contacts, 28)))

	if m.err != nil {
		s.WriteString("\n" + m.styles.stopped.Render(m.err.Error()) + "\n")
	}

	if m.showHelp {
		s.WriteString(m.styles.help.Render("space  pause/resume\nr      re-run setup\nt      cycle theme\nv      velocity vectors\n?      toggle help\nq      quit"))
	} else {
		s.WriteString(m.styles.help.Render("space:pause r:reset t:theme v:vectors ?:help q:quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.canvas.Render(m.canvas.String()),
		m.styles.panel.Render(s.String()),
	)
}

// RunLive runs the live view for s until the user quits.
func RunLive(s *sim.Simulation, opts LiveOptions) error {
	_, err := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen()).Run()
	return err
}
