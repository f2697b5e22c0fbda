package cluster

import "errors"

var (
	// ErrInvalidSize indicates a non-positive linear dimension.
	ErrInvalidSize = errors.New("cluster: lattice size must be positive")

	// ErrSiteEmpty indicates a root lookup on an unoccupied site.
	ErrSiteEmpty = errors.New("cluster: site not occupied")

	// ErrSiteOutOfRange indicates a site index outside [0, N).
	ErrSiteOutOfRange = errors.New("cluster: site index out of range")

	// ErrInvalidOrder indicates an occupation order that is not a permutation of 0..N-1.
	ErrInvalidOrder = errors.New("cluster: occupation order is not a permutation")
)
