package viz

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/parzivale/particlesim/internal/config"
	"github.com/parzivale/particlesim/internal/sim"
)

var presetInfo = map[string]string{
	"default":   "ten balls, gentle drift",
	"crowded":   "many small fast balls",
	"jam":       "overfilled, heavy packing",
	"heavy":     "wide mass spread",
	"billiards": "equal balls on a long table",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// param is one editable configuration field of the picker.
type param struct {
	name string
	get  func(c *config.Config) float64
	set  func(c *config.Config, v float64)
	step float64
}

var params = []param{
	{"balls", func(c *config.Config) float64 { return float64(c.Simulation.BallCount) },
		func(c *config.Config, v float64) { c.Simulation.BallCount = int(v) }, 5},
	{"size min", func(c *config.Config) float64 { return float64(c.Simulation.SizeRange.Min) },
		func(c *config.Config, v float64) { c.Simulation.SizeRange.Min = int(v) }, 1},
	{"size max", func(c *config.Config) float64 { return float64(c.Simulation.SizeRange.Max) },
		func(c *config.Config, v float64) { c.Simulation.SizeRange.Max = int(v) }, 1},
	{"mass min", func(c *config.Config) float64 { return float64(c.Simulation.MassRange.Min) },
		func(c *config.Config, v float64) { c.Simulation.MassRange.Min = int(v) }, 1},
	{"mass max", func(c *config.Config) float64 { return float64(c.Simulation.MassRange.Max) },
		func(c *config.Config, v float64) { c.Simulation.MassRange.Max = int(v) }, 1},
	{"vel min", func(c *config.Config) float64 { return c.Simulation.VelocityRange.Min },
		func(c *config.Config, v float64) { c.Simulation.VelocityRange.Min = v }, 0.5},
	{"vel max", func(c *config.Config) float64 { return c.Simulation.VelocityRange.Max },
		func(c *config.Config, v float64) { c.Simulation.VelocityRange.Max = v }, 0.5},
	{"seed", func(c *config.Config) float64 { return float64(c.Simulation.Seed) },
		func(c *config.Config, v float64) { c.Simulation.Seed = uint64(max(v, 0)) }, 1},
}

// picker lets the user choose a preset, tweak it and start the live view.
type picker struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	opts          LiveOptions
	width, height int
	live          Model
}

func newPicker(opts LiveOptions) picker {
	return picker{
		state:   stateMenu,
		presets: config.ListPresets(),
		opts:    opts,
		width:   80,
		height:  24,
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m picker) forward(msg tea.Msg) (picker, tea.Cmd) {
	next, cmd := m.live.Update(msg)
	m.live = next.(Model)
	return m, cmd
}

func (m picker) handleKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	p := params[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				p.set(m.cfg, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				m.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(p.get(m.cfg), 'f', -1, 64)
	case "left", "h":
		p.set(m.cfg, p.get(m.cfg)-p.step)
	case "right", "l":
		p.set(m.cfg, p.get(m.cfg)+p.step)
	case "s":
		return m.start()
	}
	return m, nil
}

// start builds the simulation and hands the terminal size to the live view
// so that it sets up immediately.
func (m picker) start() (picker, tea.Cmd) {
	s, err := sim.New(*m.cfg, sim.WithLogger(log.New(io.Discard)))
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live = NewModel(s, m.opts)
	m.state = stateSim
	m, _ = m.forward(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	return m, m.live.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("PARTICLESIM") + "\n    " + subStyle.Render("bouncing ball simulation") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-12s", name)), infoStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", idleStyle.Render(fmt.Sprintf("%-12s", name)), subStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	name := m.presets[m.cursor]
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(name)) + "\n    " + subStyle.Render(presetInfo[name]) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, p := range params {
		val := fmt.Sprintf("%8.2f", p.get(m.cfg))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-10s", p.name)), infoStyle.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", idleStyle.Render(fmt.Sprintf("%-10s", p.name)), subStyle.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker, which leads into the live view.
func RunInteractive(opts LiveOptions) error {
	_, err := tea.NewProgram(newPicker(opts), tea.WithAltScreen()).Run()
	return err
}
