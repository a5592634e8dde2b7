package sim

import (
	"errors"
	"fmt"

	"github.com/parzivale/particlesim/internal/geom"
)

var (
	// ErrNoViewport is the panic value, wrapped, of Setup and Tick when the
	// viewport cannot report bounds.
	ErrNoViewport = geom.ErrNoViewport

	// ErrInvalidConfig wraps every configuration rejected by New or Run.
	ErrInvalidConfig = errors.New("particlesim: invalid configuration")

	// ErrInvalidPhase indicates a phase transition that is not allowed.
	ErrInvalidPhase = errors.New("particlesim: invalid phase transition")

	// ErrUnstable indicates a ball position or velocity became NaN or Inf.
	ErrUnstable = errors.New("particlesim: simulation unstable (non-finite ball state)")
)

// SimError wraps an error with the tick and phase it happened in.
type SimError struct {
	Tick  int
	Phase Phase
	Err   error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("tick %d (%s): %v", e.Tick, e.Phase, e.Err)
}

func (e *SimError) Unwrap() error {
	return e.Err
}
