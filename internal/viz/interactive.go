package viz

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/experiment"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

var modelInfo = map[string]string{
	"ising":       "spin ½ ferro/antiferromagnet",
	"potts":       "q-state Potts model",
	"percolation": "Newman-Ziff site percolation",
	"harddisk":    "event-driven hard disks",
	"wanglandau":  "density of states",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// entry is one model/preset pair in the menu.
type entry struct {
	model, preset string
}

// field is an editable numeric setting of a configuration.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

type app struct {
	state, cursor int
	entries       []entry
	cfg           *config.Config
	fields        []field
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	registry      *experiment.Registry
	logger        *log.Logger
	liveModel     Model
}

// NewInteractiveApp lists every preset of every registered model.
func NewInteractiveApp() *app {
	var entries []entry
	for _, model := range config.Models {
		for _, preset := range config.ListPresets(model) {
			entries = append(entries, entry{model, preset})
		}
	}
	return &app{
		state:    stateMenu,
		entries:  entries,
		registry: experiment.NewRegistry(),
		logger:   log.New(io.Discard),
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		if msg.String() == "esc" {
			m.state = stateConfig
			return m, nil
		}
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		e := m.entries[m.cursor]
		m.cfg = config.GetPreset(e.model, e.preset)
		m.fields = fieldsFor(e.model)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.fields[m.fieldCursor].set(m.cfg, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		f := m.fields[m.fieldCursor]
		m.editing, m.editBuf = true, strconv.FormatFloat(f.get(m.cfg), 'g', -1, 64)
	case "s":
		cmd := m.start()
		return m, cmd
	}
	return m, nil
}

// start validates the edited configuration and hands the engine to the live
// view. Errors stay on the configuration screen.
func (m *app) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return nil
	}
	engine, err := m.registry.GetModel(m.cfg.Model, m.cfg, m.cfg.Seed, m.logger)
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.liveModel = NewModel(engine, m.cfg.Model)
	m.state = stateSim
	return m.liveModel.Init()
}

func fieldsFor(model string) []field {
	seed := field{"seed",
		func(c *config.Config) float64 { return float64(c.Seed) },
		func(c *config.Config, v float64) { c.Seed = int64(v) }}
	switch model {
	case "ising", "potts":
		fs := []field{
			{"T", func(c *config.Config) float64 { return c.Spin.T }, func(c *config.Config, v float64) { c.Spin.T = v }},
			{"J", func(c *config.Config) float64 { return c.Spin.J }, func(c *config.Config, v float64) { c.Spin.J = v }},
			{"H", func(c *config.Config) float64 { return c.Spin.H }, func(c *config.Config, v float64) { c.Spin.H = v }},
			{"Lx", func(c *config.Config) float64 { return float64(c.Spin.Lx) }, func(c *config.Config, v float64) { c.Spin.Lx = int(v) }},
			{"Ly", func(c *config.Config) float64 { return float64(c.Spin.Ly) }, func(c *config.Config, v float64) { c.Spin.Ly = int(v) }},
		}
		if model == "potts" {
			fs = append(fs, field{"q", func(c *config.Config) float64 { return float64(c.Spin.Q) }, func(c *config.Config, v float64) { c.Spin.Q = int(v) }})
		}
		return append(fs, seed)
	case "percolation":
		return []field{
			{"L", func(c *config.Config) float64 { return float64(c.Percolation.L) }, func(c *config.Config, v float64) { c.Percolation.L = int(v) }},
			seed,
		}
	case "harddisk":
		return []field{
			{"N", func(c *config.Config) float64 { return float64(c.HardDisk.N) }, func(c *config.Config, v float64) { c.HardDisk.N = int(v) }},
			{"Lx", func(c *config.Config) float64 { return c.HardDisk.Lx }, func(c *config.Config, v float64) { c.HardDisk.Lx = v }},
			{"Ly", func(c *config.Config) float64 { return c.HardDisk.Ly }, func(c *config.Config, v float64) { c.HardDisk.Ly = v }},
			{"T", func(c *config.Config) float64 { return c.HardDisk.T }, func(c *config.Config, v float64) { c.HardDisk.T = v }},
			seed,
		}
	case "wanglandau":
		return []field{
			{"L", func(c *config.Config) float64 { return float64(c.WangLandau.L) }, func(c *config.Config, v float64) { c.WangLandau.L = int(v) }},
			{"flatness", func(c *config.Config) float64 { return c.WangLandau.FlatThreshold }, func(c *config.Config, v float64) { c.WangLandau.FlatThreshold = v }},
			{"final lnf", func(c *config.Config) float64 { return c.WangLandau.FinalLnF }, func(c *config.Config, v float64) { c.WangLandau.FinalLnF = v }},
			seed,
		}
	}
	return []field{seed}
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func keyHelp(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("STATMECH") + "\n    " + subStyle.Render("lattice and particle Monte Carlo") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, e := range m.entries {
		name := e.model + "/" + e.preset
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), pickStyle.Render(fmt.Sprintf("%-26s", name)), noteStyle.Render(modelInfo[e.model])))
		} else {
			b.WriteString(fmt.Sprintf("    %s\n", idleStyle.Render(fmt.Sprintf("  %-26s", name))))
		}
	}
	b.WriteString("\n    " + keyHelp("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	e := m.entries[m.cursor]
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(e.model+" "+e.preset)) + "\n    " + subStyle.Render(modelInfo[e.model]) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, f := range m.fields {
		valStr := fmt.Sprintf("%10.4g", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), pickStyle.Render(fmt.Sprintf("%-10s", f.name)), noteStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", f.name)), idleStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHelp("j/k", "select", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
