package action

import (
	"fmt"
	"slices"

	"github.com/dshills/keychord/internal/input/key"
)

// Handler is a named action bound to a set of inputs.
type Handler interface {
	// Name identifies the action within its context.
	Name() string

	// Inputs returns the inputs the action claims.
	Inputs() []key.Input

	// Handle reacts to an input event and decides its propagation.
	Handle(state State, ev Event) Decision
}

// HandlerFunc is the callback a host invokes for a bound action name.
type HandlerFunc func(name string, state State, ev Event) Decision

// Validate checks that h has a name and at least one input.
func Validate(h Handler) error {
	if h.Name() == "" {
		return ErrEmptyName
	}
	if len(h.Inputs()) == 0 {
		return fmt.Errorf("%w: %s", ErrNoInputs, h.Name())
	}
	return nil
}

// Command runs a callback for one input state and sinks every state.
//
// A Command claims exclusive ownership of its inputs. Two commands on the
// same input that differ only by desired state do not combine: the one
// registered later receives every state first and sinks it.
type Command struct {
	name    string
	inputs  []key.Input
	desired State
	fn      func(Event)
}

// New returns a Command that calls fn when an input reaches desired.
func New(name string, desired State, inputs []key.Input, fn func(Event)) *Command {
	return &Command{
		name:    name,
		inputs:  slices.Clone(inputs),
		desired: desired,
		fn:      fn,
	}
}

// Begin returns a Command that fires when an input goes down.
func Begin(name string, inputs []key.Input, fn func(Event)) *Command {
	return New(name, StateBegin, inputs, fn)
}

// End returns a Command that fires when an input goes up.
func End(name string, inputs []key.Input, fn func(Event)) *Command {
	return New(name, StateEnd, inputs, fn)
}

// Name implements Handler.
func (c *Command) Name() string { return c.name }

// Inputs implements Handler.
func (c *Command) Inputs() []key.Input { return slices.Clone(c.inputs) }

// Desired returns the state the callback fires on.
func (c *Command) Desired() State { return c.desired }

// Handle implements Handler.
func (c *Command) Handle(state State, ev Event) Decision {
	if state == c.desired && c.fn != nil {
		c.fn(ev)
	}
	return Sink
}

// Direct forwards every event to its callback and returns its decision.
type Direct struct {
	name   string
	inputs []key.Input
	fn     func(State, Event) Decision
}

// Func returns a Direct handler.
func Func(name string, inputs []key.Input, fn func(State, Event) Decision) *Direct {
	return &Direct{
		name:   name,
		inputs: slices.Clone(inputs),
		fn:     fn,
	}
}

// Name implements Handler.
func (d *Direct) Name() string { return d.name }

// Inputs implements Handler.
func (d *Direct) Inputs() []key.Input { return slices.Clone(d.inputs) }

// Handle implements Handler.
func (d *Direct) Handle(state State, ev Event) Decision {
	if d.fn == nil {
		return Unset
	}
	return d.fn(state, ev)
}
