package lattice

import "math/rand"

// DefaultSeed is used when a caller passes seed 0.
const DefaultSeed int64 = 1

// NewRand returns a deterministic stream. Seed 0 maps to DefaultSeed so that a
// zero-valued config still reproduces.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// Permutation returns a uniformly random permutation of 0..n-1 (Fisher-Yates).
func Permutation(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
