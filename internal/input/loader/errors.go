package loader

import "errors"

// ErrDuplicateAction is returned by LoadAsMap when two children produce the
// same action name.
var ErrDuplicateAction = errors.New("duplicate action definition")
