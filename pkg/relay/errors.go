package relay

import (
	"errors"
	"fmt"
)

// Sentinel errors for registration and dispatch.
var (
	// ErrMissingCallback indicates On was called with a nil callback.
	ErrMissingCallback = errors.New("missing callback")

	// ErrUnknownRunner indicates an event suffix named a runner that is not registered.
	ErrUnknownRunner = errors.New("unknown runner")

	// ErrHandlerFailure matches every *HandlerError via errors.Is.
	ErrHandlerFailure = errors.New("handler failure")
)

// HandlerError reports a handler that returned an error, panicked, or
// returned a future that rejected. It aborts the dispatch it occurred in.
type HandlerError struct {
	Event    string // Event name without runner suffix
	Runner   string // Runner that was driving the dispatch
	Epoch    uint64 // Epoch stamp of the dispatch
	Position int    // Index of the handler in the candidate snapshot
	Err      error  // Underlying error
}

// Error implements error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("event %s: handler %d (%s, epoch %d): %v", e.Event, e.Position, e.Runner, e.Epoch, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrHandlerFailure.
func (e *HandlerError) Is(target error) bool {
	return target == ErrHandlerFailure
}
