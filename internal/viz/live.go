package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/statmech/internal/experiment"
	"github.com/san-kum/statmech/internal/sim"
)

const (
	width           = 72
	height          = 24
	historyCapacity = 600
	maxStepsPerTick = 4096
)

type TickMsg time.Time

// Model drives any sim.Engine from the Bubble Tea event loop. Each tick runs
// stepsPerTick engine steps and records one sample per series.
type Model struct {
	engine       sim.Engine
	name         string
	series       []string
	history      [][]float64
	selected     int
	stepsPerTick int
	steps        int
	running      bool
	showHelp     bool
	err          error
	canvas       *Canvas
	recording    bool
	frames       []*image.Paletted
	gifPath      string
}

// NewModel wraps an engine built by the experiment registry.
func NewModel(engine sim.Engine, name string) Model {
	series := engine.Series()
	return Model{
		engine:       engine,
		name:         name,
		series:       series,
		history:      make([][]float64, len(series)),
		stepsPerTick: 1,
		running:      true,
		canvas:       NewCanvas(width, height),
		gifPath:      "statmech.gif",
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the engine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			if len(m.series) > 0 {
				m.selected = (m.selected + 1) % len(m.series)
			}
		case "+", "=":
			if m.stepsPerTick < maxStepsPerTick {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "up", "k":
			m.adjustTemperature(1.02)
		case "down", "j":
			m.adjustTemperature(1 / 1.02)
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
			if m.recording {
				m.captureFrame()
			}
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one tick worth of steps. An engine error pauses the view.
func (m *Model) advance() {
	for k := 0; k < m.stepsPerTick; k++ {
		if err := m.engine.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.steps++
	}
	for i, v := range m.engine.Observables() {
		if i >= len(m.history) {
			break
		}
		m.history[i] = append(m.history[i], v)
		if len(m.history[i]) > historyCapacity {
			m.history[i] = m.history[i][1:]
		}
	}
}

// adjustTemperature rescales T of spin engines and restarts their averages.
func (m *Model) adjustTemperature(factor float64) {
	se, ok := m.engine.(*experiment.SpinEngine)
	if !ok {
		return
	}
	model := se.Model()
	if err := model.SetTemperature(model.Temperature() * factor); err != nil {
		m.err = err
		return
	}
	m.reset()
}

// reset clears the engine's averages and the recorded history.
func (m *Model) reset() {
	m.engine.ResetData()
	for i := range m.history {
		m.history[i] = m.history[i][:0]
	}
	m.err = nil
}

func (m *Model) captureFrame() {
	switch e := m.engine.(type) {
	case *experiment.SpinEngine:
		spins := e.Model().Snapshot()
		lx, ly := e.Model().Size()
		cells := make([]int, len(spins))
		for i, s := range spins {
			cells[i] = stateIndex(s) + 1
		}
		m.frames = append(m.frames, LatticeFrame(cells, lx, ly, 4, CurrentTheme.Palette()))
	case *experiment.PercolationEngine:
		p := e.Percolation()
		cells := make([]int, p.N())
		for s, occ := range p.Occupancy() {
			switch {
			case !occ:
			case p.Spanning(s):
				cells[s] = 2
			default:
				cells[s] = 1
			}
		}
		palette := color.Palette{hexColor(CurrentTheme.Vacant), hexColor(CurrentTheme.Occupied), hexColor(CurrentTheme.Spanning)}
		m.frames = append(m.frames, LatticeFrame(cells, p.L(), p.L(), 4, palette))
	default:
		m.draw()
		m.frames = append(m.frames, CanvasFrame(m.canvas))
	}
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 3)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		m.err = err
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.err = err
	}
}

// draw renders the engines that have no lattice onto the braille canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	switch e := m.engine.(type) {
	case *experiment.HardDiskEngine:
		x, y := e.Gas().Positions()
		lx, ly := e.Gas().Box()
		DrawDisks(m.canvas, x, y, lx, ly)
	case *experiment.WangLandauEngine:
		levels := e.Sampler().Levels()
		xs := make([]float64, len(levels))
		ys := make([]float64, len(levels))
		for i, l := range levels {
			xs[i], ys[i] = float64(l.E), l.LnG
		}
		DrawCurve(m.canvas, xs, ys)
	default:
		if len(m.history) > 0 {
			h := m.history[m.selected]
			xs := make([]float64, len(h))
			for i := range xs {
				xs[i] = float64(i)
			}
			DrawCurve(m.canvas, xs, h)
		}
	}
}

// systemView is the left-hand panel.
func (m *Model) systemView() string {
	switch e := m.engine.(type) {
	case *experiment.SpinEngine:
		lx, ly := e.Model().Size()
		return SpinGrid(e.Model().Snapshot(), lx, ly, width, height*2, CurrentTheme)
	case *experiment.PercolationEngine:
		p := e.Percolation()
		return PercolationGrid(p.Occupancy(), p.Spanning, p.L(), height*2, CurrentTheme)
	}
	m.draw()
	style := lipgloss.NewStyle().Foreground(CurrentTheme.Disk)
	return style.Render(m.canvas.String())
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.systemView())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " ● REC"
	}
	s.WriteString(fmt.Sprintf("%s  steps %d  ×%d/tick\n\n", status, m.steps, m.stepsPerTick))

	if len(m.series) > 0 {
		h := m.history[m.selected]
		if len(h) > 1 {
			chart := asciigraph.Plot(h, asciigraph.Height(6), asciigraph.Width(34), asciigraph.Caption(m.series[m.selected]))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
	}

	s.WriteString("SERIES\n")
	for i, name := range m.series {
		h := m.history[i]
		val := 0.0
		if len(h) > 0 {
			val = h[len(h)-1]
		}
		line := fmt.Sprintf("%-14s %10.5g ", name, val)
		if i == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + SparklineChart(h, 12) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + SparklineChart(h, 12) + "\n")
		}
	}

	if e, ok := m.engine.(*experiment.PercolationEngine); ok {
		s.WriteString("\n" + labelStyle.Render("occupation") + ProgressBar(e.Percolation().OccupationProbability(), 16) + "\n")
	}

	s.WriteString("\nSUMMARY\n")
	summary := m.engine.Summary()
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.WriteString(labelStyle.Render(k) + valueStyle.Render(fmt.Sprintf("%.6g", summary[k])) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit Tab:Series\n+/-:Speed ↑↓:Temp T:Theme G:Record ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset averages           ║
║  Q        - Quit                     ║
║  Tab      - Cycle plotted series     ║
║  +/-      - Double/halve steps/tick  ║
║  Up/K     - Raise temperature (+2%)  ║
║  Down/J   - Lower temperature (-2%)  ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts a full-screen live view of engine.
func Run(engine sim.Engine, name string) error {
	p := tea.NewProgram(NewModel(engine, name), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
