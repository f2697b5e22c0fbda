package lattice

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		i, L, want int
	}{
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 0},
		{-1, 4, 3},
		{-5, 4, 3},
		{9, 4, 1},
	}

	for _, tt := range tests {
		if got := Wrap(tt.i, tt.L); got != tt.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tt.i, tt.L, got, tt.want)
		}
	}
}

func TestWrapFloat(t *testing.T) {
	tests := []struct {
		x, L, want float64
	}{
		{0.5, 10, 0.5},
		{10.25, 10, 0.25},
		{-0.25, 10, 9.75},
		{25, 10, 5},
		{-15, 10, 5},
	}

	for _, tt := range tests {
		got := WrapFloat(tt.x, tt.L)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapFloat(%v, %v) = %v, want %v", tt.x, tt.L, got, tt.want)
		}
		if got < 0 || got >= tt.L {
			t.Errorf("WrapFloat(%v, %v) = %v outside [0, L)", tt.x, tt.L, got)
		}
	}
}

func TestMinImage(t *testing.T) {
	tests := []struct {
		ds, L, want float64
	}{
		{1, 10, 1},
		{6, 10, -4},
		{-6, 10, 4},
		{5, 10, 5},
	}

	for _, tt := range tests {
		if got := MinImage(tt.ds, tt.L); got != tt.want {
			t.Errorf("MinImage(%v, %v) = %v, want %v", tt.ds, tt.L, got, tt.want)
		}
	}
}

func TestNeighborsSquare(t *testing.T) {
	nbr, err := Square.Neighbors(3, 3)
	if err != nil {
		t.Fatalf("neighbors failed: %v", err)
	}

	// site 0 = (0,0): right (1,0)=1, left (2,0)=2, up (0,1)=3, down (0,2)=6
	got := append([]int(nil), nbr[0:4]...)
	sort.Ints(got)
	want := []int{1, 2, 3, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("neighbors of 0 = %v, want %v", got, want)
		}
	}
}

func TestNeighborsSymmetric(t *testing.T) {
	for _, topo := range []Topology{Square, Triangular} {
		nbr, err := topo.Neighbors(5, 4)
		if err != nil {
			t.Fatalf("%s: %v", topo.Name, err)
		}
		z := topo.Coordination()
		for s := 0; s < 20; s++ {
			for k := 0; k < z; k++ {
				j := nbr[s*z+k]
				found := false
				for m := 0; m < z; m++ {
					if nbr[j*z+m] == s {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("%s: %d lists %d but not the reverse", topo.Name, s, j)
				}
			}
		}
	}
}

func TestNeighborsInvalid(t *testing.T) {
	if _, err := Square.Neighbors(0, 3); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestSelfBonded(t *testing.T) {
	tests := []struct {
		topo   Topology
		lx, ly int
		want   bool
	}{
		{Square, 4, 4, false},
		{Square, 2, 2, false},
		{Square, 1, 4, true},
		{Square, 4, 1, true},
		{Square, 1, 1, true},
		{Triangular, 2, 2, false},
		{Triangular, 6, 1, true},
		{Chain, 2, 1, false},
		{Chain, 1, 1, true},
	}
	for _, tt := range tests {
		if got := tt.topo.SelfBonded(tt.lx, tt.ly); got != tt.want {
			t.Errorf("%s %dx%d: expected %v, got %v", tt.topo.Name, tt.lx, tt.ly, tt.want, got)
		}
		if tt.want {
			continue
		}
		nbr, err := tt.topo.Neighbors(tt.lx, tt.ly)
		if err != nil {
			t.Fatal(err)
		}
		z := tt.topo.Coordination()
		for i, j := range nbr {
			if i/z == j {
				t.Errorf("%s %dx%d: site %d lists itself", tt.topo.Name, tt.lx, tt.ly, j)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		if _, err := Lookup(name); err != nil {
			t.Errorf("lookup %s: %v", name, err)
		}
	}
	if _, err := Lookup("hexagonal"); !errors.Is(err, ErrUnknownTopology) {
		t.Errorf("expected ErrUnknownTopology, got %v", err)
	}
}

func TestPermutation(t *testing.T) {
	p := Permutation(50, NewRand(7))
	seen := make([]bool, 50)
	for _, v := range p {
		if seen[v] {
			t.Fatalf("value %d repeated", v)
		}
		seen[v] = true
	}

	q := Permutation(50, NewRand(7))
	for i := range p {
		if p[i] != q[i] {
			t.Fatal("same seed produced different permutations")
		}
	}
}

func TestNewRandZeroSeed(t *testing.T) {
	a := NewRand(0).Int63()
	b := NewRand(DefaultSeed).Int63()
	if a != b {
		t.Error("seed 0 should map to DefaultSeed")
	}
}
