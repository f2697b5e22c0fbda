package viz

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stateGlyphs tell spin states apart on terminals without colour.
var stateGlyphs = []rune("░█▓▒#*+o")

const (
	vacantGlyph   = '·'
	occupiedGlyph = '▒'
	spanningGlyph = '█'
)

// stride is the smallest step that fits n sites into max cells.
func stride(n, max int) int {
	if max <= 0 || n <= max {
		return 1
	}
	return (n + max - 1) / max
}

func stateIndex(s int) int {
	if s == -1 {
		return 0
	}
	return s
}

// SpinGrid draws one cell per site, subsampled so that at most maxW×maxH
// cells are used. Row 0 is drawn at the bottom.
func SpinGrid(spins []int, lx, ly, maxW, maxH int, theme Theme) string {
	sx, sy := stride(lx, maxW), stride(ly, maxH)
	styles := make(map[int]lipgloss.Style)
	var b strings.Builder
	for y := ly - 1; y >= 0; y -= sy {
		for x := 0; x < lx; x += sx {
			s := spins[y*lx+x]
			st, ok := styles[s]
			if !ok {
				st = lipgloss.NewStyle().Foreground(theme.StateColor(s))
				styles[s] = st
			}
			g := stateGlyphs[stateIndex(s)%len(stateGlyphs)]
			b.WriteString(st.Render(string(g)))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// PercolationGrid draws vacant, occupied and spanning sites of an L×L lattice.
func PercolationGrid(occ []bool, spanning func(int) bool, l, max int, theme Theme) string {
	st := stride(l, max)
	vacant := lipgloss.NewStyle().Foreground(theme.Vacant)
	occupied := lipgloss.NewStyle().Foreground(theme.Occupied)
	span := lipgloss.NewStyle().Foreground(theme.Spanning).Bold(true)

	var b strings.Builder
	for y := l - 1; y >= 0; y -= st {
		for x := 0; x < l; x += st {
			s := y*l + x
			switch {
			case !occ[s]:
				b.WriteString(vacant.Render(string(vacantGlyph)))
			case spanning(s):
				b.WriteString(span.Render(string(spanningGlyph)))
			default:
				b.WriteString(occupied.Render(string(occupiedGlyph)))
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// DrawDisks outlines unit-diameter disks of a periodic lx×ly box on c, with
// the box edges as a frame.
func DrawDisks(c *Canvas, x, y []float64, lx, ly float64) {
	cw, ch := c.Width*2, c.Height*4
	scale := math.Min(float64(cw-1)/lx, float64(ch-1)/ly)
	w, h := int(lx*scale), int(ly*scale)

	c.DrawLine(0, 0, w, 0)
	c.DrawLine(0, h, w, h)
	c.DrawLine(0, 0, 0, h)
	c.DrawLine(w, 0, w, h)

	for i := range x {
		px := int(math.Round(x[i] * scale))
		py := h - int(math.Round(y[i]*scale))
		c.DrawCircle(px, py, 0.5*scale)
	}
}

// DrawCurve plots ys against xs, scaled to fill c.
func DrawCurve(c *Canvas, xs, ys []float64) {
	if len(xs) < 2 {
		return
	}
	cw, ch := c.Width*2, c.Height*4
	xmin, xmax := bounds(xs)
	ymin, ymax := bounds(ys)
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	project := func(i int) (int, int) {
		px := int((xs[i] - xmin) / (xmax - xmin) * float64(cw-1))
		py := ch - 1 - int((ys[i]-ymin)/(ymax-ymin)*float64(ch-1))
		return px, py
	}
	x0, y0 := project(0)
	for i := 1; i < len(xs); i++ {
		x1, y1 := project(i)
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// LatticeFrame paints cells (palette indices) of an lx×ly lattice into an
// image with px pixels per site.
func LatticeFrame(cells []int, lx, ly, px int, palette color.Palette) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, lx*px, ly*px), palette)
	for y := 0; y < ly; y++ {
		for x := 0; x < lx; x++ {
			idx := uint8(cells[y*lx+x] % len(palette))
			row := (ly - 1 - y) * px
			for dy := 0; dy < px; dy++ {
				for dx := 0; dx < px; dx++ {
					img.SetColorIndex(x*px+dx, row+dy, idx)
				}
			}
		}
	}
	return img
}

// CanvasFrame rasterises the braille dots of c, 8×16 pixels per cell.
func CanvasFrame(c *Canvas) *image.Paletted {
	const charW, charH = 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			pattern := int(c.Grid[row][col] - blank)
			if pattern == 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					baseX, baseY := col*charW+dx*dotW, row*charH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+px, baseY+py, 1)
						}
					}
				}
			}
		}
	}
	return img
}

// Palette converts theme colours into an image palette: the vacant colour
// first, then the state colours.
func (t Theme) Palette() color.Palette {
	p := color.Palette{hexColor(t.Vacant)}
	for _, c := range t.States {
		p = append(p, hexColor(c))
	}
	return p
}

// hexColor parses "#rrggbb"; anything else maps to grey.
func hexColor(c lipgloss.Color) color.RGBA {
	s := strings.TrimPrefix(string(c), "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		return color.RGBA{0x80, 0x80, 0x80, 0xff}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
