// Package spin implements Monte Carlo dynamics for Ising and q-state Potts
// models on a periodic lattice.
//
// One engine covers every variant. The neighbour structure comes from a
// [lattice.Topology], the sign of J selects ferro- or antiferromagnetic
// coupling, and Q selects Ising (Q == 2, spins ±1) or Potts (Q > 2, states
// 0..Q-1):
//
//	square ferromagnet:        Params{Topology: lattice.Square, Q: 2, J: 1}
//	triangular antiferromagnet: Params{Topology: lattice.Triangular, Q: 2, J: -1}
//	1D chain:                  Params{Topology: lattice.Chain, Ly: 1, Q: 2, J: 1}
//	8-state Potts:             Params{Topology: lattice.Square, Q: 8, J: 1}
//
// Energies are
//
//	Ising: E = -J Σ<ij> s_i s_j - H Σ s_i
//	Potts: E = -J Σ<ij> δ(σ_i, σ_j)
//
// with each bond counted once. E and M are updated incrementally by every
// accepted move and always equal [Model.RecomputeEnergy] and
// [Model.RecomputeMagnetization].
//
// # Dynamics
//
// [Model.Step] is one Metropolis sweep of N single-site trials. [Model.WolffStep]
// grows and flips one Wolff cluster. Both accumulate E, E², M, M² once per call
// and advance the sweep counter.
//
// # Thread Safety
//
// A Model is NOT safe for concurrent use. Run independent seeds in separate
// Models.
package spin
