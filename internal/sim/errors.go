package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")

	// ErrInvalidSample indicates an engine reported a NaN or Inf observable.
	ErrInvalidSample = errors.New("sim: observable is NaN or Inf")

	ErrSeriesMismatch = errors.New("sim: observables do not match series")
)

// SimulationError wraps a failure with the step at which it happened.
type SimulationError struct {
	Engine  string
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s: step %d: %v", e.Engine, e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
