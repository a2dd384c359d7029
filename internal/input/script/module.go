package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/key"
)

// LoadModule evaluates src and builds the handler its table describes.
// label names the chunk in errors and is the default action name.
func (s *State) LoadModule(label, src string) (action.Handler, error) {
	if s.closed {
		return nil, ErrStateClosed
	}

	chunk, err := s.L.Load(strings.NewReader(src), label)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModule, label, err)
	}
	ret, err := s.call(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModule, label, err)
	}

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %s: module returned %s, want table", ErrInvalidModule, label, ret.Type())
	}
	return s.handlerFromTable(label, tbl)
}

func (s *State) handlerFromTable(label string, tbl *lua.LTable) (action.Handler, error) {
	h := &handler{state: s, name: label}

	switch v := tbl.RawGetString("name").(type) {
	case lua.LString:
		h.name = string(v)
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("%w: %s: name must be a string", ErrInvalidModule, label)
	}

	inputs, ok := tbl.RawGetString("inputs").(*lua.LTable)
	if !ok || inputs.Len() == 0 {
		return nil, fmt.Errorf("%w: %s: inputs must be a non-empty list", ErrInvalidModule, label)
	}
	for i := 1; i <= inputs.Len(); i++ {
		spec, ok := inputs.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("%w: %s: inputs[%d] is not a string", ErrInvalidModule, label, i)
		}
		in, err := key.Parse(string(spec))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModule, label, err)
		}
		h.inputs = append(h.inputs, in)
	}

	switch v := tbl.RawGetString("state").(type) {
	case lua.LString:
		st, err := action.ParseState(string(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModule, label, err)
		}
		h.desired = st
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("%w: %s: state must be a string", ErrInvalidModule, label)
	}

	fn, ok := tbl.RawGetString("handle").(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s: handle must be a function", ErrInvalidModule, label)
	}
	h.fn = fn

	return h, nil
}

// handler is an action.Handler backed by a Lua function.
type handler struct {
	state   *State
	name    string
	inputs  []key.Input
	desired action.State
	fn      *lua.LFunction
}

func (h *handler) Name() string { return h.name }

func (h *handler) Inputs() []key.Input {
	out := make([]key.Input, len(h.inputs))
	copy(out, h.inputs)
	return out
}

// Handle runs the Lua function. Failures are logged; a filtered handler
// still sinks, a direct handler passes so a broken script never eats input.
func (h *handler) Handle(state action.State, ev action.Event) action.Decision {
	if h.state.Closed() {
		h.state.log.WithField("action", h.name).Error("handler called after its state was closed")
		if h.desired != action.StateNone {
			return action.Sink
		}
		return action.Pass
	}
	evTable := h.eventTable(state, ev)

	if h.desired != action.StateNone {
		if state == h.desired {
			if _, err := h.state.call(h.fn, evTable); err != nil {
				h.state.log.WithField("action", h.name).Error("handler failed: %v", err)
			}
		}
		return action.Sink
	}

	ret, err := h.state.call(h.fn, lua.LString(state.String()), evTable)
	if err != nil {
		h.state.log.WithField("action", h.name).Error("handler failed: %v", err)
		return action.Pass
	}

	switch strings.ToLower(lua.LVAsString(ret)) {
	case "sink":
		return action.Sink
	case "pass":
		return action.Pass
	case "":
		return action.Unset
	default:
		h.state.log.WithField("action", h.name).Warn("handler returned %q, treating as unset", lua.LVAsString(ret))
		return action.Unset
	}
}

func (h *handler) eventTable(state action.State, ev action.Event) *lua.LTable {
	t := h.state.L.NewTable()
	t.RawSetString("input", lua.LString(ev.Input.String()))
	t.RawSetString("state", lua.LString(state.String()))
	t.RawSetString("x", lua.LNumber(ev.X))
	t.RawSetString("y", lua.LNumber(ev.Y))
	return t
}
