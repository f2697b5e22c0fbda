// Package cluster identifies clusters of occupied sites on an L×L lattice.
//
// [Percolation] implements the Newman-Ziff algorithm: sites are occupied one at
// a time in a random order and clusters are merged incrementally with a
// weighted, path-compressed union-find. [Label] is the batch Hoshen-Kopelman
// labelling of a fixed configuration.
//
// Both use open boundaries. A cluster spans when it touches the left and right
// columns.
package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/statmech/internal/lattice"
)

// empty marks an unoccupied site in parent.
const empty = math.MinInt

// Percolation holds the union-find forest for one realisation.
//
// parent[s] >= 0: index of the next site on the path to the root.
// empty < parent[s] < 0: s is a root of a cluster with -parent[s] sites.
// parent[s] == empty: s is unoccupied.
type Percolation struct {
	l        int
	n        int
	occupied int

	// numClusters[s] is n_s, the number of clusters of size s.
	numClusters []int
	// secondMoment is sum(s^2 n_s) over all clusters.
	secondMoment int
	spanningSize int
	spanningAt   int

	order        []int
	parent       []int
	touchesLeft  []bool
	touchesRight []bool

	rng *rand.Rand
}

// New allocates a lattice of linear size L and prepares an empty realisation.
func New(L int, seed int64) (*Percolation, error) {
	if L <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, L)
	}
	n := L * L
	p := &Percolation{
		l:            L,
		n:            n,
		numClusters:  make([]int, n+1),
		parent:       make([]int, n),
		touchesLeft:  make([]bool, n),
		touchesRight: make([]bool, n),
		rng:          lattice.NewRand(seed),
	}
	p.Reset()
	return p, nil
}

// Reset empties the lattice and draws a new occupation order.
func (p *Percolation) Reset() {
	p.order = lattice.Permutation(p.n, p.rng)
	p.clear()
}

// SetOrder empties the lattice and installs an explicit occupation order.
func (p *Percolation) SetOrder(order []int) error {
	if len(order) != p.n {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidOrder, len(order), p.n)
	}
	seen := make([]bool, p.n)
	for _, s := range order {
		if s < 0 || s >= p.n || seen[s] {
			return fmt.Errorf("%w: bad entry %d", ErrInvalidOrder, s)
		}
		seen[s] = true
	}
	p.order = append(p.order[:0], order...)
	p.clear()
	return nil
}

func (p *Percolation) clear() {
	p.occupied = 0
	p.secondMoment = 0
	p.spanningSize = 0
	p.spanningAt = 0
	for s := 0; s < p.n; s++ {
		p.parent[s] = empty
		p.touchesLeft[s] = s%p.l == 0
		p.touchesRight[s] = s%p.l == p.l-1
	}
	for i := range p.numClusters {
		p.numClusters[i] = 0
	}
}

// AddRandomSite occupies the next site of the occupation order and merges it
// with its occupied neighbours. It reports false when the lattice is full.
func (p *Percolation) AddRandomSite() bool {
	if p.occupied == p.n {
		return false
	}
	site := p.order[p.occupied]
	p.occupied++

	p.numClusters[1]++
	p.secondMoment++
	p.parent[site] = -1

	root := site
	for j := 0; j < 4; j++ {
		nb, ok := p.neighbor(site, j)
		if !ok || p.parent[nb] == empty {
			continue
		}
		root = p.mergeRoots(root, p.findRoot(nb))
	}

	// a lone site on an L=1 lattice spans without any merge
	if p.spanningSize == 0 && p.touchesLeft[root] && p.touchesRight[root] {
		p.markSpanning(root)
	}
	return true
}

// FindRoot returns the root site of the cluster containing s.
func (p *Percolation) FindRoot(s int) (int, error) {
	if s < 0 || s >= p.n {
		return 0, fmt.Errorf("%w: %d", ErrSiteOutOfRange, s)
	}
	if p.parent[s] == empty {
		return 0, fmt.Errorf("%w: %d", ErrSiteEmpty, s)
	}
	return p.findRoot(s), nil
}

// findRoot walks to the root and then points every site on the path directly
// at it, leaving the same compressed forest as the recursive formulation.
func (p *Percolation) findRoot(s int) int {
	root := s
	for p.parent[root] >= 0 {
		root = p.parent[root]
	}
	for p.parent[s] >= 0 {
		next := p.parent[s]
		p.parent[s] = root
		s = next
	}
	return root
}

// mergeRoots joins the clusters rooted at r1 and r2 and returns the new root.
// The larger cluster absorbs the smaller; on a tie r1 absorbs r2.
func (p *Percolation) mergeRoots(r1, r2 int) int {
	if r1 == r2 {
		return r1
	}
	if -p.parent[r1] < -p.parent[r2] {
		r1, r2 = r2, r1
	}
	s1, s2 := -p.parent[r1], -p.parent[r2]

	p.numClusters[s1]--
	p.numClusters[s2]--
	p.numClusters[s1+s2]++
	p.secondMoment += (s1+s2)*(s1+s2) - s1*s1 - s2*s2

	p.parent[r1] -= s2
	p.parent[r2] = r1

	p.touchesLeft[r1] = p.touchesLeft[r1] || p.touchesLeft[r2]
	p.touchesRight[r1] = p.touchesRight[r1] || p.touchesRight[r2]
	if p.touchesLeft[r1] && p.touchesRight[r1] {
		p.markSpanning(r1)
	}
	return r1
}

// markSpanning assumes at most one spanning cluster: any later growth of the
// spanning cluster overwrites its size, the first appearance is kept.
func (p *Percolation) markSpanning(root int) {
	if p.spanningAt == 0 {
		p.spanningAt = p.occupied
	}
	p.spanningSize = -p.parent[root]
}

// neighbor returns the j-th open-boundary neighbour of s: 0 left, 1 right,
// 2 down, 3 up.
func (p *Percolation) neighbor(s, j int) (int, bool) {
	L := p.l
	switch j {
	case 0:
		return s - 1, s%L != 0
	case 1:
		return s + 1, s%L != L-1
	case 2:
		return s - L, s/L != 0
	case 3:
		return s + L, s/L != L-1
	}
	return 0, false
}

// ClusterSize returns the size of the cluster containing s, or 0 if s is empty.
func (p *Percolation) ClusterSize(s int) int {
	if s < 0 || s >= p.n || p.parent[s] == empty {
		return 0
	}
	return -p.parent[p.findRoot(s)]
}

// Spanning reports whether s belongs to a cluster touching both the left and
// right columns.
func (p *Percolation) Spanning(s int) bool {
	if s < 0 || s >= p.n || p.parent[s] == empty {
		return false
	}
	r := p.findRoot(s)
	return p.touchesLeft[r] && p.touchesRight[r]
}

// SpanningClusterSize returns the size of the spanning cluster, 0 if none.
func (p *Percolation) SpanningClusterSize() int { return p.spanningSize }

// SpanningFirstAt returns the number of occupied sites when a spanning cluster
// first appeared, 0 if none has.
func (p *Percolation) SpanningFirstAt() int { return p.spanningAt }

// MeanClusterSize returns S = sum(s^2 n_s)/sum(s n_s) with the spanning
// cluster excluded from both moments.
func (p *Percolation) MeanClusterSize() float64 {
	span := p.spanningSize
	second := float64(p.secondMoment - span*span)
	first := float64(p.occupied - span)
	if first <= 0 {
		return 0
	}
	return second / first
}

func (p *Percolation) L() int        { return p.l }
func (p *Percolation) N() int        { return p.n }
func (p *Percolation) Occupied() int { return p.occupied }

// OccupationProbability is the fraction of occupied sites.
func (p *Percolation) OccupationProbability() float64 {
	return float64(p.occupied) / float64(p.n)
}

// ClusterCounts returns a copy of n_s indexed by cluster size.
func (p *Percolation) ClusterCounts() []int {
	out := make([]int, len(p.numClusters))
	copy(out, p.numClusters)
	return out
}

// Occupancy returns a row-major snapshot of occupied sites.
func (p *Percolation) Occupancy() []bool {
	occ := make([]bool, p.n)
	for s, v := range p.parent {
		occ[s] = v != empty
	}
	return occ
}
