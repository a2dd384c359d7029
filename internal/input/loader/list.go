package loader

import "github.com/dshills/keychord/internal/input/action"

// Module is an in-memory child.
type Module struct {
	label       string
	priority    float64
	hasPriority bool
	load        func() (action.Handler, error)
}

// NewModule returns a child whose Load calls fn.
func NewModule(label string, fn func() (action.Handler, error)) *Module {
	return &Module{label: label, load: fn}
}

// Static returns a child that always loads h.
func Static(label string, h action.Handler) *Module {
	return NewModule(label, func() (action.Handler, error) { return h, nil })
}

// WithPriority sets the child's priority attribute.
func (m *Module) WithPriority(p float64) *Module {
	m.priority = p
	m.hasPriority = true
	return m
}

// Label implements Child.
func (m *Module) Label() string { return m.label }

// Load implements Child.
func (m *Module) Load() (action.Handler, error) { return m.load() }

// Priority implements Prioritized.
func (m *Module) Priority() (float64, bool) { return m.priority, m.hasPriority }

// List is a Container over a fixed slice of children.
type List []Child

// Children implements Container. The returned slice is a copy.
func (l List) Children() ([]Child, error) {
	out := make([]Child, len(l))
	copy(out, l)
	return out, nil
}
