package loader

import (
	"fmt"
	"math"
	"sort"

	"github.com/dshills/keychord/internal/input/action"
)

// Child is one loadable action-definition module in a container.
type Child interface {
	// Label names the child within its container.
	Label() string

	// Load builds the child's handler.
	Load() (action.Handler, error)
}

// Prioritized is implemented by children that carry a priority attribute.
type Prioritized interface {
	Priority() (float64, bool)
}

// Container enumerates loadable children in a stable order.
type Container interface {
	Children() ([]Child, error)
}

// PriorityOf returns the child's priority, or +Inf when it has none.
func PriorityOf(c Child) float64 {
	if p, ok := c.(Prioritized); ok {
		if v, ok := p.Priority(); ok {
			return v
		}
	}
	return math.Inf(1)
}

// SortByPriority stable-sorts children by ascending priority in place.
func SortByPriority(children []Child) {
	sort.SliceStable(children, func(i, j int) bool {
		return PriorityOf(children[i]) < PriorityOf(children[j])
	})
}

// Reverse reverses handlers in place.
func Reverse(handlers []action.Handler) {
	for i, j := 0, len(handlers)-1; i < j; i, j = i+1, j-1 {
		handlers[i], handlers[j] = handlers[j], handlers[i]
	}
}

// LoadOrdered loads every child of c in registration order: ascending
// priority, then reversed.
func LoadOrdered(c Container) ([]action.Handler, error) {
	children, err := c.Children()
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}

	SortByPriority(children)

	handlers := make([]action.Handler, 0, len(children))
	for _, child := range children {
		h, err := load(child)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	Reverse(handlers)
	return handlers, nil
}

// LoadAsMap loads every child of c keyed by action name.
func LoadAsMap(c Container) (map[string]action.Handler, error) {
	children, err := c.Children()
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}

	byName := make(map[string]action.Handler, len(children))
	from := make(map[string]string, len(children))
	for _, child := range children {
		h, err := load(child)
		if err != nil {
			return nil, err
		}
		if prev, dup := from[h.Name()]; dup {
			return nil, fmt.Errorf("%w: %q in %q and %q", ErrDuplicateAction, h.Name(), prev, child.Label())
		}
		byName[h.Name()] = h
		from[h.Name()] = child.Label()
	}
	return byName, nil
}

func load(child Child) (action.Handler, error) {
	h, err := child.Load()
	if err != nil {
		return nil, fmt.Errorf("loading child %q: %w", child.Label(), err)
	}
	if h == nil {
		return nil, fmt.Errorf("loading child %q: no handler", child.Label())
	}
	if err := action.Validate(h); err != nil {
		return nil, fmt.Errorf("loading child %q: %w", child.Label(), err)
	}
	return h, nil
}
