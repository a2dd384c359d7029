package binding

import (
	"github.com/google/uuid"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// Context owns a fixed sequence of handlers and binds them as a unit.
//
// The handler set and the name index are never mutated after New, so Enter,
// Leave and Dispatch may be called from inside a handler's callback.
// A Context is not safe for concurrent use; hosts deliver events serially.
type Context struct {
	id       string
	host     Host
	handlers []action.Handler
	byName   map[string]action.Handler
	bound    bool
	dispatch action.HandlerFunc
	log      *logging.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for protocol warnings.
func WithLogger(l *logging.Logger) Option {
	return func(c *Context) {
		c.log = l
	}
}

// WithID overrides the generated context identifier.
func WithID(id string) Option {
	return func(c *Context) {
		c.id = id
	}
}

// New creates a Context over handlers, in registration order.
//
// Handlers sharing a name all get bound by Enter, but only the last one
// receives dispatches. New panics if host or any handler is nil.
func New(host Host, handlers []action.Handler, opts ...Option) *Context {
	if host == nil {
		panic("binding: nil host")
	}

	c := &Context{
		id:       uuid.New().String(),
		host:     host,
		handlers: make([]action.Handler, len(handlers)),
		byName:   make(map[string]action.Handler, len(handlers)),
	}
	for i, h := range handlers {
		if h == nil {
			panic("binding: nil handler")
		}
		c.handlers[i] = h
		c.byName[h.Name()] = h
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.Default()
	}
	c.log = c.log.WithComponent("binding").WithField("context", c.id)

	if len(c.byName) != len(c.handlers) {
		c.log.Debug("context has %d handlers but %d names; later duplicates win dispatch",
			len(c.handlers), len(c.byName))
	}

	c.dispatch = c.Dispatch
	return c
}

// ID returns the identifier used in log output.
func (c *Context) ID() string {
	return c.id
}

// Bound reports whether the context is between Enter and Leave.
func (c *Context) Bound() bool {
	return c.bound
}

// Handlers returns the handler sequence in registration order.
func (c *Context) Handlers() []action.Handler {
	out := make([]action.Handler, len(c.handlers))
	copy(out, c.handlers)
	return out
}

// Lookup returns the handler that receives dispatches for name.
func (c *Context) Lookup(name string) (action.Handler, bool) {
	h, ok := c.byName[name]
	return h, ok
}

// Enter binds every handler with the host, in order.
// Entering a bound context logs a warning and binds again.
func (c *Context) Enter() {
	if c.bound {
		c.log.Warn("enter called on a context that is already bound")
	}

	for _, h := range c.handlers {
		c.host.Bind(h.Name(), c.dispatch, h.Inputs())
	}
	c.bound = true

	c.log.Debug("entered with %d actions", len(c.handlers))
}

// Bind is an alias for Enter.
func (c *Context) Bind() {
	c.Enter()
}

// Leave unbinds every handler from the host.
// Leaving an unbound context logs a warning and unbinds anyway.
func (c *Context) Leave() {
	if !c.bound {
		c.log.Warn("leave called on a context that is not bound")
	}

	for _, h := range c.handlers {
		c.host.Unbind(h.Name())
	}
	c.bound = false

	c.log.Debug("left")
}

// Unbind is an alias for Leave.
func (c *Context) Unbind() {
	c.Leave()
}

// Dispatch routes a host event to the handler registered under name and
// returns its decision unchanged, Unset included. Unknown names are logged
// and passed so they never swallow input.
func (c *Context) Dispatch(name string, state action.State, ev action.Event) action.Decision {
	h, ok := c.byName[name]
	if !ok {
		c.log.WithField("action", name).Warn("dispatch to unknown action")
		return action.Pass
	}
	return h.Handle(state, ev)
}

// CreateBindAction returns a chord handler that enters c while one of
// inputs is held.
func (c *Context) CreateBindAction(name string, inputs []key.Input) *Chord {
	return newChord(name, inputs, c)
}
