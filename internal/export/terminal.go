package export

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// Terminal is a sink that keeps the last Capacity points of every series for
// drawing with asciigraph.
type Terminal struct {
	Capacity int
	names    []string
	data     map[int][]float64
}

func NewTerminal(names []string, capacity int) *Terminal {
	if capacity < 2 {
		capacity = 2
	}
	return &Terminal{Capacity: capacity, names: names, data: make(map[int][]float64)}
}

func (t *Terminal) Append(series int, _, y float64) {
	d := append(t.data[series], y)
	if len(d) > t.Capacity {
		d = d[len(d)-t.Capacity:]
	}
	t.data[series] = d
}

// Values returns the buffered points of one series.
func (t *Terminal) Values(series int) []float64 {
	return t.data[series]
}

// Render draws one series, or reports that it has too few points.
func (t *Terminal) Render(series, height, width int) string {
	name := fmt.Sprintf("series %d", series)
	if series >= 0 && series < len(t.names) {
		name = t.names[series]
	}
	return Chart(t.data[series], name, height, width)
}

// Chart is an asciigraph line chart with a caption.
func Chart(values []float64, caption string, height, width int) string {
	if len(values) < 2 {
		return fmt.Sprintf("%s: not enough data", caption)
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
