// Package binding groups action handlers into contexts that register and
// unregister with a host input service as a unit.
//
// A Context is built once from a fixed handler sequence. Enter binds every
// handler with the host, in order; Leave unbinds them. While entered, the
// host calls back into Dispatch, which routes the event to the handler with
// the matching name.
//
// Contexts compose through chords. CreateBindAction returns a handler that
// enters its context while an outer input is held and leaves it on release:
//
//	editing := binding.New(host, []action.Handler{cut, copy, paste})
//	root := binding.New(host, []action.Handler{
//	    editing.CreateBindAction("edit-layer", key.MustParseAll("Mouse2")),
//	})
//	root.Enter()
//
// Chords nest: a chord handler placed in a context that is itself entered by
// a chord yields a three-input chord, and so on. Outer inputs must be pressed
// in nesting order.
//
// Misuse of the Enter/Leave protocol and dispatches to unknown names are
// logged as warnings and otherwise tolerated.
package binding
