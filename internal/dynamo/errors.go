package dynamo

import (
	"errors"
	"fmt"
)

// Configuration errors. They are fatal: a simulation is never built from a
// configuration that produced one of these.
var (
	// ErrInvalidMass indicates a zero, negative or non-finite mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive")

	// ErrInvalidSubsteps indicates a substep count below one.
	ErrInvalidSubsteps = errors.New("dynamo: substeps must be at least 1")

	// ErrInvalidTimeStep indicates a non-positive time step.
	ErrInvalidTimeStep = errors.New("dynamo: time step must be positive")

	// ErrUnknownIntegrator indicates an unrecognized integration method.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integration method")

	// ErrInvalidGeometry indicates malformed vertex or triangle input.
	ErrInvalidGeometry = errors.New("dynamo: invalid geometry")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParameter indicates a tunable name that does not exist.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")
)

// ErrInvalidState indicates node positions or velocities went NaN or Inf.
// The core never raises it on its own; it is reported by runs that ask for
// state validation.
var ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

// SimulationError wraps an error with the tick at which it was observed.
type SimulationError struct {
	Tick    int
	Time    float64
	Node    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f) node %d: %v", e.Tick, e.Time, e.Node, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
