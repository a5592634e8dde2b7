package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/parzivale/particlesim/internal/config"
	"github.com/parzivale/particlesim/internal/sim"
)

func newLive(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Simulation.Seed = 9
	cfg.Simulation.BallCount = 12
	s, err := sim.New(*cfg)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, DefaultLiveOptions())
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveWaitsForWindowSize(t *testing.T) {
	m := newLive(t)
	m = update(m, TickMsg{})

	if m.ready {
		t.Fatal("ready before any window size")
	}
	if m.sim.Phase() != sim.Setup {
		t.Errorf("expected setup phase, got %s", m.sim.Phase())
	}
	if !strings.Contains(m.View(), "waiting") {
		t.Error("expected waiting view")
	}
}

func TestLiveSetupOnWindowSize(t *testing.T) {
	m := newLive(t)
	m = update(m, tea.WindowSizeMsg{Width: 140, Height: 40})

	if !m.ready || m.sim.Phase() != sim.Simulate {
		t.Fatalf("expected running simulation, phase %s", m.sim.Phase())
	}

	cols := 140 - chrome
	wantW := float32(cols*2) * m.opts.Scale
	if got := m.vp.bounds.Width(); got != wantW {
		t.Errorf("bounds width %f, want %f", got, wantW)
	}

	for i := 0; i < 3; i++ {
		m = update(m, TickMsg{})
	}
	if m.sim.Ticks() != 3 {
		t.Errorf("expected 3 ticks, got %d", m.sim.Ticks())
	}
	if len(m.energy) != 4 {
		t.Errorf("expected 4 energy samples, got %d", len(m.energy))
	}
	if !strings.Contains(m.View(), "PARTICLESIM") {
		t.Error("panel header missing")
	}
}

func TestLiveResizeClampsBalls(t *testing.T) {
	m := newLive(t)
	m = update(m, tea.WindowSizeMsg{Width: 200, Height: 60})
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 20})
	m = update(m, TickMsg{})

	b := m.vp.bounds
	for _, e := range m.balls {
		if !b.ContainsCircle(e.Ball.Pos(), float32(e.Ball.Radius), 0.2) {
			t.Errorf("ball %s outside resized bounds %s", e.ID, b)
		}
	}
}

func TestLiveKeys(t *testing.T) {
	m := newLive(t)
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 30})

	m = update(m, key(" "))
	if m.sim.Phase() != sim.Pause {
		t.Fatalf("expected pause, got %s", m.sim.Phase())
	}
	m = update(m, TickMsg{})
	if m.sim.Ticks() != 0 {
		t.Error("ticked while paused")
	}

	m = update(m, key(" "))
	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	if m.sim.Ticks() != 2 {
		t.Errorf("expected 2 ticks, got %d", m.sim.Ticks())
	}

	m = update(m, key("r"))
	if m.sim.Ticks() != 0 || m.sim.Phase() != sim.Simulate {
		t.Errorf("reset left tick %d phase %s", m.sim.Ticks(), m.sim.Phase())
	}

	before := m.theme.Name
	m = update(m, key("t"))
	if m.theme.Name == before {
		t.Error("theme did not change")
	}

	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).sim.Phase() != sim.Stop {
		t.Error("quit did not stop the simulation")
	}
}
