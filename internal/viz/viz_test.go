package viz

import (
	"image/color"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/statmech/internal/experiment"
	"github.com/san-kum/statmech/internal/lattice"
	"github.com/san-kum/statmech/internal/spin"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	c.Set(100, 100)
	c.Set(-1, 0)
	if got := c.Dots(); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("expected top-left dot, got %U", c.Grid[0][0])
	}
	c.Clear()
	if c.Dots() != 0 {
		t.Error("clear left dots behind")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 2)
	c.DrawLine(0, 3, 19, 3)
	if got := c.Dots(); got != 20 {
		t.Errorf("expected 20 dots on a horizontal line, got %d", got)
	}
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 rows, got %d", len(lines))
	}
}

func TestStride(t *testing.T) {
	tests := []struct{ n, max, want int }{
		{10, 32, 1},
		{32, 32, 1},
		{100, 32, 4},
		{64, 0, 1},
	}
	for _, tt := range tests {
		if got := stride(tt.n, tt.max); got != tt.want {
			t.Errorf("stride(%d, %d) = %d, want %d", tt.n, tt.max, got, tt.want)
		}
	}
}

func TestSpinGrid(t *testing.T) {
	spins := []int{
		1, 1, -1, -1,
		1, -1, 1, -1,
	}
	got := SpinGrid(spins, 4, 2, 80, 40, ThemeCyberpunk)
	want := "█░█░\n██░░"
	if got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}

	big := make([]int, 64*64)
	lines := strings.Split(SpinGrid(big, 64, 64, 16, 16, ThemeOcean), "\n")
	if len(lines) != 16 {
		t.Errorf("expected 16 rows after subsampling, got %d", len(lines))
	}
}

func TestPercolationGrid(t *testing.T) {
	occ := []bool{true, true, false, true}
	spanning := func(s int) bool { return s < 2 }
	got := PercolationGrid(occ, spanning, 2, 10, ThemeRetroGreen)
	want := "·▒\n██"
	if got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestDrawDisks(t *testing.T) {
	c := NewCanvas(20, 10)
	DrawDisks(c, []float64{2.5, 7.5}, []float64{2.5, 2.5}, 10, 10)
	frame := c.Dots()
	if frame == 0 {
		t.Fatal("nothing drawn")
	}

	empty := NewCanvas(20, 10)
	DrawDisks(empty, nil, nil, 10, 10)
	if frame <= empty.Dots() {
		t.Error("disks added no dots to the frame")
	}
}

func TestDrawCurveFlat(t *testing.T) {
	c := NewCanvas(10, 4)
	DrawCurve(c, []float64{0, 1, 2}, []float64{5, 5, 5})
	if c.Dots() == 0 {
		t.Error("expected a flat curve to be drawn")
	}
	c.Clear()
	DrawCurve(c, []float64{0}, []float64{1})
	if c.Dots() != 0 {
		t.Error("single point should not draw")
	}
}

func TestLatticeFrame(t *testing.T) {
	palette := color.Palette{color.Black, color.White}
	img := LatticeFrame([]int{1, 0, 0, 0}, 2, 2, 3, palette)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Fatalf("expected 6x6 image, got %v", b)
	}
	// site 0 is drawn in the bottom-left corner
	if img.ColorIndexAt(0, 5) != 1 || img.ColorIndexAt(0, 0) != 0 {
		t.Error("site 0 not at the bottom-left")
	}
}

func TestCanvasFrame(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	img := CanvasFrame(c)
	if img.ColorIndexAt(0, 0) != 1 || img.ColorIndexAt(15, 15) != 0 {
		t.Error("dot not rasterised at the top-left")
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor("#ff8000"); got != (color.RGBA{0xff, 0x80, 0x00, 0xff}) {
		t.Errorf("unexpected colour %v", got)
	}
	if got := hexColor("205"); got != (color.RGBA{0x80, 0x80, 0x80, 0xff}) {
		t.Errorf("expected grey fallback, got %v", got)
	}
	if n := len(ThemeOcean.Palette()); n != len(ThemeOcean.States)+1 {
		t.Errorf("expected %d palette entries, got %d", len(ThemeOcean.States)+1, n)
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme("cyberpunk")

	if GetTheme("missing").Name != "cyberpunk" {
		t.Error("unknown theme should fall back to cyberpunk")
	}
	SetTheme("ocean")
	NextTheme()
	if CurrentTheme.Name != "cyberpunk" {
		t.Errorf("expected wrap-around to cyberpunk, got %s", CurrentTheme.Name)
	}
	if ThemeCyberpunk.StateColor(-1) != ThemeCyberpunk.States[0] || ThemeCyberpunk.StateColor(9) != ThemeCyberpunk.States[1] {
		t.Error("state colours mapped incorrectly")
	}
}

func TestSparkline(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("expected empty sparkline, got %q", got)
	}
	if got := SparklineChart([]float64{1, 2, 3, 4, 5, 6}, 3); len([]rune(got)) != 3 {
		t.Errorf("expected 3 runes, got %q", got)
	}
}

func newSpinModel(t *testing.T) Model {
	t.Helper()
	p := spin.Params{Lx: 8, Ly: 8, Topology: lattice.Square, Q: 2, J: 1, T: 2, Seed: 3}
	e, err := experiment.NewSpinEngine("ising", p, "metropolis")
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(e, "ising")
}

func TestModelTicks(t *testing.T) {
	m := newSpinModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = next.(Model)
	if m.stepsPerTick != 2 {
		t.Fatalf("expected 2 steps per tick, got %d", m.stepsPerTick)
	}
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.steps != 2 {
		t.Errorf("expected 2 steps, got %d", m.steps)
	}
	if len(m.history[0]) != 1 {
		t.Errorf("expected one sample, got %d", len(m.history[0]))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.steps != 2 {
		t.Error("paused model kept stepping")
	}

	if !strings.Contains(m.View(), "ISING") {
		t.Error("view lacks the model header")
	}
}

func TestModelTemperature(t *testing.T) {
	m := newSpinModel(t)
	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)

	got := m.engine.(*experiment.SpinEngine).Model().Temperature()
	if math.Abs(got-2.04) > 1e-12 {
		t.Errorf("expected T=2.04, got %f", got)
	}
	if len(m.history[0]) != 0 {
		t.Error("history not cleared after a temperature change")
	}
}

func TestInteractiveStartsPreset(t *testing.T) {
	a := NewInteractiveApp()
	if len(a.entries) == 0 {
		t.Fatal("no presets listed")
	}
	next, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(app)
	if m.state != stateConfig {
		t.Fatalf("expected config screen, got state %d", m.state)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(app)
	if m.err != nil {
		t.Fatalf("start failed: %v", m.err)
	}
	if m.state != stateSim {
		t.Errorf("expected live view, got state %d", m.state)
	}
}

func TestInteractiveRejectsInvalidEdit(t *testing.T) {
	a := NewInteractiveApp()
	next, _ := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(app)
	m.fields[0].set(m.cfg, -1)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(app)
	if m.err == nil || m.state != stateConfig {
		t.Error("expected a validation error on the config screen")
	}
}
