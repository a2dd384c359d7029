package action

import "errors"

// Errors returned when validating handlers.
var (
	// ErrEmptyName is returned for a handler without a name.
	ErrEmptyName = errors.New("action has no name")

	// ErrNoInputs is returned for a handler that claims no inputs.
	ErrNoInputs = errors.New("action has no inputs")

	// ErrUnknownState is returned by ParseState.
	ErrUnknownState = errors.New("unknown input state")
)
