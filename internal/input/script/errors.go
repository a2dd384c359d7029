package script

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrInvalidModule is returned when a module does not evaluate to a
	// well-formed action table.
	ErrInvalidModule = errors.New("invalid action module")
)
