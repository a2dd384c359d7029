package binding

import (
	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/key"
)

// Host is the input-binding service contexts register with.
//
// Bind must treat a repeated name as an overwrite, and Unbind of a name that
// is not bound must be a no-op. Hosts give later bindings precedence over
// earlier ones on overlapping inputs.
type Host interface {
	Bind(name string, fn action.HandlerFunc, inputs []key.Input)
	Unbind(name string)
}
