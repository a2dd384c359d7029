package host

import (
	"slices"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

type entry struct {
	name   string
	fn     action.HandlerFunc
	inputs []key.Input
}

// Registry implements binding.Host.
//
// Bindings are kept in bind order. Re-binding a name replaces the old
// binding and moves the name to the newest position. Registry is not safe
// for concurrent use; events must be delivered from one goroutine.
type Registry struct {
	order  []*entry
	byName map[string]*entry
	log    *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Default()
	}
	return &Registry{
		byName: make(map[string]*entry),
		log:    log.WithComponent("host"),
	}
}

// Bind registers fn under name for inputs.
func (r *Registry) Bind(name string, fn action.HandlerFunc, inputs []key.Input) {
	r.remove(name)
	e := &entry{name: name, fn: fn, inputs: slices.Clone(inputs)}
	r.order = append(r.order, e)
	r.byName[name] = e
	r.log.Debug("bind %s to %s", name, key.Strings(inputs))
}

// Unbind removes the binding for name. Unknown names are ignored.
func (r *Registry) Unbind(name string) {
	if r.remove(name) {
		r.log.Debug("unbind %s", name)
	}
}

func (r *Registry) remove(name string) bool {
	e, ok := r.byName[name]
	if !ok {
		return false
	}
	delete(r.byName, name)
	r.order = slices.DeleteFunc(r.order, func(o *entry) bool { return o == e })
	return true
}

// Bound reports whether name is bound.
func (r *Registry) Bound(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns bound names, oldest first.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, e := range r.order {
		names[i] = e.name
	}
	return names
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	return len(r.order)
}

// Deliver offers ev to every binding on ev.Input, newest first, and reports
// whether one of them sank it.
//
// Candidates are fixed before the first call. A candidate that an earlier
// handler unbinds or replaces is skipped; bindings added during delivery
// only see later events.
func (r *Registry) Deliver(ev action.Event) bool {
	var candidates []*entry
	for i := len(r.order) - 1; i >= 0; i-- {
		if slices.Contains(r.order[i].inputs, ev.Input) {
			candidates = append(candidates, r.order[i])
		}
	}

	for _, e := range candidates {
		if r.byName[e.name] != e {
			continue
		}
		d := e.fn(e.name, ev.State, ev)
		r.log.Debug("%s %s -> %s: %s", ev.Input, ev.State, e.name, d)
		if d.Sinks() {
			return true
		}
	}
	return false
}
