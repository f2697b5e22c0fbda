package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/san-kum/statmech/internal/sim"
)

// SeriesPlot draws the named series against the sample step. An empty names
// list plots every series.
func SeriesPlot(result *sim.Result, names ...string) (*plot.Plot, error) {
	if len(names) == 0 {
		names = result.Series
	}

	p := plot.New()
	p.Title.Text = result.Engine
	p.X.Label.Text = "step"
	p.Add(plotter.NewGrid())

	for i, name := range names {
		col := result.Column(name)
		if col == nil {
			return nil, fmt.Errorf("unknown series %q", name)
		}
		pts := make(plotter.XYs, len(col))
		for k, v := range col {
			pts[k].X = float64(result.Steps[k])
			pts[k].Y = v
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true

	return p, nil
}

// LatticePlot is a heat map of a spin configuration, one cell per site.
func LatticePlot(spins []int, lx, ly int) *plot.Plot {
	h := hbook.NewH2D(lx, 0, float64(lx), ly, 0, float64(ly))
	for i, s := range spins {
		x, y := i%lx, i/lx
		h.Fill(float64(x)+0.5, float64(y)+0.5, float64(s))
	}

	p := plot.New()
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Tick.Marker = &hplot.FreqTicks{N: lx + 1, Freq: tickFreq(lx)}
	p.Y.Tick.Marker = &hplot.FreqTicks{N: ly + 1, Freq: tickFreq(ly)}
	p.X.Min, p.X.Max = h.XMin(), h.XMax()
	p.Y.Min, p.Y.Max = h.YMin(), h.YMax()
	p.Add(hplot.NewH2D(h, nil))
	return p
}

func tickFreq(n int) int {
	if n <= 10 {
		return 1
	}
	return n / 8
}

// DiskPlot draws disk centres inside the box. Glyphs are scaled so that unit
// diameter disks roughly fill their area at the default figure size.
func DiskPlot(x, y []float64, lx, ly float64) (*plot.Plot, error) {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	s.GlyphStyle.Radius = vg.Length(float64(DefaultWidth) / (2 * lx) * 0.8)

	p := plot.New()
	p.X.Min, p.X.Max = 0, lx
	p.Y.Min, p.Y.Max = 0, ly
	p.Add(s)
	return p, nil
}

const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 12 * vg.Centimeter
)

// Save writes the plot to a file; the format follows the extension.
func Save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	if filepath.Ext(path) == ".png" {
		return SavePNG(p, path, 300)
	}
	return p.Save(DefaultWidth, DefaultHeight, path)
}

// SavePNG renders at the given DPI.
func SavePNG(p *plot.Plot, path string, dpi int) error {
	c := vgimg.NewWith(
		vgimg.UseWH(DefaultWidth, DefaultHeight),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}

// WriteSVG renders the plot as SVG to w.
func WriteSVG(w io.Writer, p *plot.Plot) error {
	c := vgsvg.New(DefaultWidth, DefaultHeight)
	p.Draw(draw.New(c))
	_, err := c.WriteTo(w)
	return err
}
