package lattice

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize indicates a non-positive lattice dimension.
	ErrInvalidSize = errors.New("lattice: dimensions must be positive")

	// ErrUnknownTopology indicates a topology name not in the registry.
	ErrUnknownTopology = errors.New("lattice: unknown topology")
)

// Offset is a relative neighbour displacement.
type Offset struct {
	DX, DY int
}

// Topology describes a lattice by the offsets of its nearest neighbours.
// Offsets must come in +/- pairs so every bond is counted from both ends.
type Topology struct {
	Name    string
	Offsets []Offset
}

var (
	Square = Topology{
		Name:    "square",
		Offsets: []Offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}},
	}

	// Triangular uses the sheared square embedding: rows are offset by half a
	// lattice spacing, which adds the (1,-1) and (-1,1) diagonals.
	Triangular = Topology{
		Name:    "triangular",
		Offsets: []Offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, -1}, {-1, 1}},
	}

	// Chain is a ring of Lx sites; Ly must be 1.
	Chain = Topology{
		Name:    "chain",
		Offsets: []Offset{{1, 0}, {-1, 0}},
	}
)

var topologies = map[string]Topology{
	Square.Name:     Square,
	Triangular.Name: Triangular,
	Chain.Name:      Chain,
}

// Lookup returns the named topology.
func Lookup(name string) (Topology, error) {
	t, ok := topologies[name]
	if !ok {
		return Topology{}, fmt.Errorf("%w: %q", ErrUnknownTopology, name)
	}
	return t, nil
}

// Names lists registered topology names.
func Names() []string {
	return []string{Square.Name, Triangular.Name, Chain.Name}
}

// Coordination is the number of neighbours per site.
func (t Topology) Coordination() int {
	return len(t.Offsets)
}

// Neighbors builds a flat periodic neighbour table: entry site*z+k is the
// k-th neighbour of site.
func (t Topology) Neighbors(Lx, Ly int) ([]int, error) {
	if Lx <= 0 || Ly <= 0 {
		return nil, ErrInvalidSize
	}
	z := t.Coordination()
	n := Lx * Ly
	nbr := make([]int, n*z)
	for s := 0; s < n; s++ {
		x, y := Coord(s, Lx)
		for k, o := range t.Offsets {
			nbr[s*z+k] = Site(x+o.DX, y+o.DY, Lx, Ly)
		}
	}
	return nbr, nil
}

// SelfBonded reports whether some offset wraps a site onto itself on an
// Lx×Ly torus, as a side of length 1 does for any offset along it.
func (t Topology) SelfBonded(Lx, Ly int) bool {
	for _, o := range t.Offsets {
		if Wrap(o.DX, Lx) == 0 && Wrap(o.DY, Ly) == 0 {
			return true
		}
	}
	return false
}
