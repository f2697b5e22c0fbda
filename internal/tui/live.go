// Package tui draws plain ANSI frames of a running simulation. It needs no
// terminal control beyond clearing the screen, so it also works when output
// is piped through a pager or logged.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/statmech/internal/experiment"
	"github.com/san-kum/statmech/internal/sim"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// spinGlyphs index spin states, with -1 mapped to 0.
var spinGlyphs = []rune(" #o+x*%@")

// LiveRenderer is a sim.Observer that redraws the system on every sample,
// at most frameRate times a second. A zero frame rate draws every sample.
type LiveRenderer struct {
	out       io.Writer
	engine    sim.Engine
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
}

func NewLiveRenderer(out io.Writer, engine sim.Engine, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:       out,
		engine:    engine,
		frameRate: frameRate,
		canvas:    canvas,
	}
}

func (r *LiveRenderer) OnSample(s sim.Sample) {
	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = time.Now()
	}

	r.clear()

	switch e := r.engine.(type) {
	case *experiment.SpinEngine:
		lx, ly := e.Model().Size()
		r.drawSpins(e.Model().Snapshot(), lx, ly)
	case *experiment.PercolationEngine:
		p := e.Percolation()
		r.drawPercolation(p.Occupancy(), p.Spanning, p.L())
	case *experiment.HardDiskEngine:
		x, y := e.Gas().Positions()
		lx, ly := e.Gas().Box()
		r.drawDisks(x, y, lx, ly)
	default:
		r.drawGeneric(s.Values)
	}

	r.render(s)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

// cellStride fits n sites into max cells.
func cellStride(n, max int) int {
	if n <= max {
		return 1
	}
	return (n + max - 1) / max
}

func (r *LiveRenderer) drawSpins(spins []int, lx, ly int) {
	sx, sy := cellStride(lx, width), cellStride(ly, height)
	for y, row := ly-1, 0; y >= 0; y, row = y-sy, row+1 {
		for x, col := 0, 0; x < lx; x, col = x+sx, col+1 {
			s := spins[y*lx+x]
			if s == -1 {
				s = 0
			}
			r.set(col, row, spinGlyphs[s%len(spinGlyphs)])
		}
	}
}

func (r *LiveRenderer) drawPercolation(occ []bool, spanning func(int) bool, l int) {
	st := cellStride(l, height)
	for y, row := l-1, 0; y >= 0; y, row = y-st, row+1 {
		for x, col := 0, 0; x < l; x, col = x+st, col+1 {
			s := y*l + x
			switch {
			case !occ[s]:
				r.set(col, row, '.')
			case spanning(s):
				r.set(col, row, '#')
			default:
				r.set(col, row, 'o')
			}
		}
	}
}

// drawDisks marks each disk centre in a box scaled to the canvas. Terminal
// cells are about twice as tall as wide, so x is stretched by two.
func (r *LiveRenderer) drawDisks(x, y []float64, lx, ly float64) {
	scale := math.Min(float64(width-3)/(2*lx), float64(height-3)/ly)
	w, h := int(2*lx*scale)+1, int(ly*scale)+1
	for i := 0; i <= w; i++ {
		r.set(i, 0, '-')
		r.set(i, h, '-')
	}
	for j := 1; j < h; j++ {
		r.set(0, j, '|')
		r.set(w, j, '|')
	}
	for i := range x {
		r.set(1+int(2*x[i]*scale), h-1-int(y[i]*scale), 'O')
	}
}

func (r *LiveRenderer) drawGeneric(values []float64) {
	cy := height / 2
	for i := 5; i < width-5; i++ {
		r.set(i, cy, '-')
	}

	if len(values) == 0 {
		return
	}

	bw := (width - 15) / len(values)
	if bw < 3 {
		bw = 3
	}

	maxVal := 1.0
	for _, v := range values {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
		}
	}

	for i, v := range values {
		bx := 8 + i*bw
		bh := int((v / maxVal) * float64(height/3))
		if bh > 0 {
			for y := cy - 1; y >= cy-bh && y >= 1; y-- {
				r.set(bx, y, '#')
			}
		} else {
			for y := cy + 1; y <= cy-bh && y < height-1; y++ {
				r.set(bx, y, '#')
			}
		}
	}
}

func (r *LiveRenderer) render(s sim.Sample) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  step=%d\n", r.engine.Name(), s.Step))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	var line strings.Builder
	line.WriteString("  ")
	for i, name := range s.Series {
		if i < len(s.Values) {
			line.WriteString(fmt.Sprintf("%s=%.4g ", name, s.Values[i]))
		}
	}
	b.WriteString(strings.TrimRight(line.String(), " ") + "\n")

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
