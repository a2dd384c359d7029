package binding

import (
	"slices"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/key"
)

type chordState uint8

const (
	chordIdle chordState = iota
	chordActive
)

// Chord is a handler that holds its target context entered for as long as
// the outer input is down.
//
// Begin while idle enters the target; End or Cancel while active leaves
// it. Both sink. Any other event, such as a repeated Begin or a stray End,
// passes without touching the target.
type Chord struct {
	name   string
	inputs []key.Input
	target *Context
	state  chordState
}

func newChord(name string, inputs []key.Input, target *Context) *Chord {
	return &Chord{
		name:   name,
		inputs: slices.Clone(inputs),
		target: target,
	}
}

// Name implements action.Handler.
func (ch *Chord) Name() string { return ch.name }

// Inputs implements action.Handler.
func (ch *Chord) Inputs() []key.Input { return slices.Clone(ch.inputs) }

// Target returns the context the chord activates.
func (ch *Chord) Target() *Context { return ch.target }

// Active reports whether the outer input is currently held.
func (ch *Chord) Active() bool { return ch.state == chordActive }

// Handle implements action.Handler.
func (ch *Chord) Handle(state action.State, _ action.Event) action.Decision {
	switch {
	case state == action.StateBegin && ch.state == chordIdle:
		ch.state = chordActive
		ch.target.Enter()
		return action.Sink

	case (state == action.StateEnd || state == action.StateCancel) && ch.state == chordActive:
		ch.state = chordIdle
		ch.target.Leave()
		return action.Sink
	}
	return action.Pass
}
