package action

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/keychord/internal/input/key"
)

// State is the phase of an input reported by the host.
type State uint8

const (
	// StateNone is the zero value and never delivered by a host.
	StateNone State = iota
	// StateBegin means the input went down.
	StateBegin
	// StateChange means a held input changed (moved, pressure, etc).
	StateChange
	// StateEnd means the input went up.
	StateEnd
	// StateCancel means the host abandoned the input, e.g. on focus loss.
	StateCancel
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateBegin:
		return "begin"
	case StateChange:
		return "change"
	case StateEnd:
		return "end"
	case StateCancel:
		return "cancel"
	default:
		return "none"
	}
}

// ParseState parses a state name such as "begin" or "End".
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "begin", "began":
		return StateBegin, nil
	case "change", "changed":
		return StateChange, nil
	case "end", "ended":
		return StateEnd, nil
	case "cancel", "canceled", "cancelled":
		return StateCancel, nil
	}
	return StateNone, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// Decision tells the host whether an event should keep propagating.
type Decision uint8

const (
	// Unset expresses no opinion. Hosts treat it as Sink.
	Unset Decision = iota
	// Sink consumes the event.
	Sink
	// Pass lets the host offer the event to other bindings.
	Pass
)

// String returns the lower-case decision name.
func (d Decision) String() string {
	switch d {
	case Sink:
		return "sink"
	case Pass:
		return "pass"
	default:
		return "unset"
	}
}

// Sinks reports whether the host should stop propagating after d.
func (d Decision) Sinks() bool {
	return d != Pass
}

// Event is one input event delivered by the host.
type Event struct {
	// Input is the input that changed.
	Input key.Input

	// State is the new phase of the input.
	State State

	// X and Y locate pointer inputs in host cells. Zero for keys.
	X, Y int

	// Time is when the host observed the event.
	Time time.Time
}

// NewEvent creates an event stamped with the current time.
func NewEvent(in key.Input, state State) Event {
	return Event{Input: in, State: state, Time: time.Now()}
}
