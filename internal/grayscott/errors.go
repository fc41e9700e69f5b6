package grayscott

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrInvalidConfiguration indicates an engine cannot be built from the given config.
	ErrInvalidConfiguration = errors.New("grayscott: invalid configuration")

	// ErrInvalidArgument indicates an unrecognized selector or parameter name.
	ErrInvalidArgument = errors.New("grayscott: invalid argument")

	// ErrImmutableParam indicates an attempt to change a parameter fixed at construction.
	ErrImmutableParam = fmt.Errorf("%w: parameter is fixed at construction", ErrInvalidArgument)
)
