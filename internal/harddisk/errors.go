package harddisk

import "errors"

var (
	// ErrInvalidParams indicates parameters that cannot describe a disk system.
	ErrInvalidParams = errors.New("harddisk: invalid parameters")

	// ErrPlacement indicates that the initial configuration could not be built
	// without overlaps.
	ErrPlacement = errors.New("harddisk: cannot place disks without overlap")

	// ErrStateLength indicates SetState slices that do not match N.
	ErrStateLength = errors.New("harddisk: state length does not match N")

	// ErrNoCollision indicates that no pair is predicted to collide, even after
	// rebuilding every prediction.
	ErrNoCollision = errors.New("harddisk: no collision predicted")
)
