// Package host provides input-binding services that contexts register with.
//
// Registry is the binding table: it stores named bindings and offers each
// event to the bindings on that input, newest first, until one sinks it.
// Terminal drives a Registry from a tcell screen, turning key presses and
// mouse button transitions into begin, change, end and cancel events.
package host
