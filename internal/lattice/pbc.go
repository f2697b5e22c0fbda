package lattice

import "math"

// Wrap returns i mod L in [0, L).
func Wrap(i, L int) int {
	i %= L
	if i < 0 {
		i += L
	}
	return i
}

// WrapFloat maps x into [0, L). A single shift covers every ballistic move
// shorter than one box length; larger excursions fall back to math.Mod.
func WrapFloat(x, L float64) float64 {
	switch {
	case x >= L:
		x -= L
	case x < 0:
		x += L
	default:
		return x
	}
	if x < 0 || x >= L {
		x = math.Mod(x, L)
		if x < 0 {
			x += L
		}
		// math.Mod(-tiny, L)+L can round to L
		if x >= L {
			x = 0
		}
	}
	return x
}

// MinImage returns the minimum-image form of the separation ds in a periodic
// box of length L.
func MinImage(ds, L float64) float64 {
	if ds > 0.5*L {
		return ds - L
	}
	if ds < -0.5*L {
		return ds + L
	}
	return ds
}

// Site converts (x, y) to a row-major site index with periodic wrapping.
func Site(x, y, Lx, Ly int) int {
	return Wrap(x, Lx) + Wrap(y, Ly)*Lx
}

// Coord is the inverse of Site.
func Coord(site, Lx int) (x, y int) {
	return site % Lx, site / Lx
}

// Sublattice returns 0 or 1 according to the checkerboard parity of (x, y).
func Sublattice(x, y int) int {
	return (x + y) & 1
}
