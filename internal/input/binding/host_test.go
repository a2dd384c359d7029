package binding

import (
	"slices"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/key"
)

// recordingHost is a minimal Host that records calls and delivers events to
// the most recently bound action on an input.
type recordingHost struct {
	calls    []string
	order    []string
	bindings map[string]hostBinding
}

type hostBinding struct {
	fn     action.HandlerFunc
	inputs []key.Input
}

func newRecordingHost() *recordingHost {
	return &recordingHost{bindings: make(map[string]hostBinding)}
}

func (h *recordingHost) Bind(name string, fn action.HandlerFunc, inputs []key.Input) {
	h.calls = append(h.calls, "bind:"+name)
	h.remove(name)
	h.order = append(h.order, name)
	h.bindings[name] = hostBinding{fn: fn, inputs: inputs}
}

func (h *recordingHost) Unbind(name string) {
	h.calls = append(h.calls, "unbind:"+name)
	h.remove(name)
}

func (h *recordingHost) remove(name string) {
	delete(h.bindings, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			return
		}
	}
}

// deliver walks bindings newest first until one sinks. It reports whether
// any binding was invoked and whether the event was sunk.
func (h *recordingHost) deliver(in key.Input, state action.State) (invoked, sunk bool) {
	ev := action.NewEvent(in, state)
	for i := len(h.order) - 1; i >= 0; i-- {
		name := h.order[i]
		b := h.bindings[name]
		if !slices.Contains(b.inputs, in) {
			continue
		}
		invoked = true
		if b.fn(name, state, ev).Sinks() {
			return true, true
		}
	}
	return invoked, false
}

func (h *recordingHost) names() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}
