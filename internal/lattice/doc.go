// Package lattice provides the substrate shared by the lattice engines.
//
// It covers three small concerns:
//
//   - periodic boundary arithmetic for integer sites ([Wrap]) and continuous
//     coordinates ([WrapFloat], [MinImage])
//   - neighbour topologies described as relative offsets ([Topology]), so square,
//     triangular and one-dimensional models are configuration rather than code
//   - deterministic random streams ([NewRand], [Permutation])
//
// Sites are indexed row-major: site = x + y*Lx.
//
// # Example
//
//	nbr, _ := lattice.Square.Neighbors(16, 16)
//	z := lattice.Square.Coordination()
//	for k := 0; k < z; k++ {
//	    j := nbr[site*z+k]
//	}
package lattice
