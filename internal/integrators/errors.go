package integrators

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind indicates a stepping method that does not exist.
	ErrUnknownKind = errors.New("integrators: unknown method")

	// ErrInvalidSize indicates a negative equation count at construction.
	ErrInvalidSize = errors.New("integrators: invalid equation count")

	// ErrNilIntegrator indicates an operation on a nil integrator.
	ErrNilIntegrator = errors.New("integrators: nil integrator")

	// ErrIndexOutOfRange indicates an equation index >= the equation count.
	ErrIndexOutOfRange = errors.New("integrators: equation index out of range")

	// ErrDimensionMismatch indicates a vector whose length differs from the equation count.
	ErrDimensionMismatch = errors.New("integrators: dimension mismatch")

	// ErrNotInitialized indicates a released integrator or one with no equations.
	ErrNotInitialized = errors.New("integrators: incorrect initialization")

	// ErrZeroStep indicates that no step size has been set.
	ErrZeroStep = errors.New("integrators: step size must be non-zero")

	// ErrMissingEquation indicates an equation slot with no right-hand side.
	ErrMissingEquation = errors.New("integrators: right-hand side not assigned")
)

// MissingEquationError reports the first equation without a right-hand side.
type MissingEquationError struct {
	Index int
}

func (e *MissingEquationError) Error() string {
	return fmt.Sprintf("%s: equation %d", ErrMissingEquation.Error(), e.Index)
}

func (e *MissingEquationError) Unwrap() error {
	return ErrMissingEquation
}
