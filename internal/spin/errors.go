package spin

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates parameters that cannot describe a model.
	ErrInvalidConfig = errors.New("spin: invalid configuration")

	// ErrWolffAntiferro indicates a Wolff move requested for J <= 0, where
	// same-state bonds are not favoured and the cluster rule does not apply.
	ErrWolffAntiferro = errors.New("spin: wolff dynamics requires ferromagnetic coupling")

	// ErrWolffField indicates a Wolff move requested with a non-zero field.
	ErrWolffField = errors.New("spin: wolff dynamics requires zero external field")
)

// ConfigError names the offending parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("spin: invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
