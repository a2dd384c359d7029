package app

import (
	"fmt"
	"os"
	"slices"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/binding"
	"github.com/dshills/keychord/internal/input/loader"
	"github.com/dshills/keychord/internal/input/script"
	"github.com/dshills/keychord/internal/logging"
)

// RootID identifies the root context in logs.
const RootID = "root"

// Options configures an App.
type Options struct {
	// Config is the loaded configuration. Nil uses config.Default.
	Config *config.Config

	// Host receives bindings. Required.
	Host binding.Host

	// Logger defaults to logging.Default.
	Logger *logging.Logger

	// Notify receives the messages action modules pass to notify().
	Notify func(msg string)
}

// App owns the root context built from the configured actions directory and
// one inner context per configured chord.
type App struct {
	cfg    *config.Config
	host   binding.Host
	log    *logging.Logger
	notify func(string)

	mu      sync.Mutex
	current *generation
	closed  bool
}

// generation is everything built from one read of the action directories.
type generation struct {
	root   *binding.Context
	layers []layer
	states []*script.State
}

type layer struct {
	ctx   *binding.Context
	chord *binding.Chord
}

// New loads the action modules and enters the root context.
func New(opts Options) (*App, error) {
	if opts.Host == nil {
		return nil, ErrNoHost
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Notify == nil {
		opts.Notify = func(string) {}
	}

	a := &App{
		cfg:    opts.Config,
		host:   opts.Host,
		log:    opts.Logger.WithComponent("app"),
		notify: opts.Notify,
	}

	g, err := a.build()
	if err != nil {
		return nil, err
	}
	a.current = g
	g.root.Enter()
	a.log.Info("loaded %d actions, %d chords", len(g.root.Handlers()), len(g.layers))

	return a, nil
}

// Root returns the current root context.
func (a *App) Root() *binding.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	return a.current.root
}

// Layer returns the inner context of the named chord.
func (a *App) Layer(name string) (*binding.Context, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, false
	}
	for _, l := range a.current.layers {
		if l.chord.Name() == name {
			return l.ctx, true
		}
	}
	return nil, false
}

// Reload rebuilds every context from disk. If loading fails the current
// bindings stay in place and the error is returned.
func (a *App) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	g, err := a.build()
	if err != nil {
		a.log.Error("reload failed: %v", err)
		return err
	}

	a.current.teardown()
	a.current = g
	g.root.Enter()
	a.log.Info("reloaded %d actions", len(g.root.Handlers()))
	return nil
}

// Close leaves every context and releases the script states.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	a.current.teardown()
	a.current = nil
	return nil
}

func (a *App) build() (*generation, error) {
	g := &generation{}

	handlers, err := a.loadDir(g, RootID, a.cfg.ActionsDir)
	if err != nil {
		return nil, err
	}

	chords := a.cfg.Chords
	inner := make([][]action.Handler, len(chords))
	index := make(map[string]int, len(chords))
	for i, ch := range chords {
		if inner[i], err = a.loadDir(g, ch.Name, ch.ActionsDir); err != nil {
			return nil, err
		}
		index[ch.Name] = i
	}

	// Parents precede their children, so building from the last chord
	// backwards creates every child context before its parent's.
	g.layers = make([]layer, len(chords))
	var top []action.Handler
	for i := len(chords) - 1; i >= 0; i-- {
		ch := chords[i]
		inputs, err := ch.ParsedInputs()
		if err != nil {
			g.close()
			return nil, fmt.Errorf("chord %q: %w", ch.Name, err)
		}

		ctx := binding.New(a.host, inner[i], binding.WithLogger(a.log), binding.WithID(ch.Name))
		chord := ctx.CreateBindAction(ch.Name, inputs)
		g.layers[i] = layer{ctx: ctx, chord: chord}

		// Chords go after the modules so a chord input wins over a module
		// bound to the same input.
		if p, ok := index[ch.Parent]; ok && p < i {
			inner[p] = append(inner[p], chord)
		} else {
			top = append(top, chord)
		}
	}
	slices.Reverse(top)
	handlers = append(handlers, top...)

	g.root = binding.New(a.host, handlers, binding.WithLogger(a.log), binding.WithID(RootID))
	a.warnSharedNames(g)
	return g, nil
}

// warnSharedNames logs action names used by more than one context. Host
// names are global, so leaving a layer also unbinds a root action that
// shares its name.
func (a *App) warnSharedNames(g *generation) {
	owner := make(map[string]string)
	for _, h := range g.root.Handlers() {
		owner[h.Name()] = RootID
	}
	for _, l := range g.layers {
		for _, h := range l.ctx.Handlers() {
			if prev, ok := owner[h.Name()]; ok && prev != l.ctx.ID() {
				a.log.WithFields(map[string]any{"action": h.Name(), "context": l.ctx.ID(), "other": prev}).
					Warn("action name used by more than one context")
				continue
			}
			owner[h.Name()] = l.ctx.ID()
		}
	}
}

// loadDir loads a directory into a fresh script state owned by g. On error
// every state in g is closed.
func (a *App) loadDir(g *generation, name, dir string) ([]action.Handler, error) {
	timeout, err := a.cfg.Timeout()
	if err != nil {
		g.close()
		return nil, err
	}

	st := script.NewState(
		script.WithCallTimeout(timeout),
		script.WithLogger(a.log.WithField("context", name)),
	)
	st.RegisterFunc("notify", a.luaNotify)
	g.states = append(g.states, st)

	handlers, err := loader.LoadOrdered(loader.NewDir(os.DirFS(dir), st))
	if err != nil {
		g.close()
		return nil, fmt.Errorf("loading %s actions from %s: %w", name, dir, err)
	}
	return handlers, nil
}

func (a *App) luaNotify(L *lua.LState) int {
	a.notify(L.CheckString(1))
	return 0
}

// teardown leaves any bound context and closes the script states.
func (g *generation) teardown() {
	if g == nil {
		return
	}
	for _, l := range slices.Backward(g.layers) {
		if l.ctx.Bound() {
			l.ctx.Leave()
		}
	}
	if g.root.Bound() {
		g.root.Leave()
	}
	g.close()
}

func (g *generation) close() {
	for _, st := range g.states {
		st.Close()
	}
}
