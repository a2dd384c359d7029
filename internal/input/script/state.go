package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keychord/internal/logging"
)

// DefaultCallTimeout bounds a single handler invocation.
const DefaultCallTimeout = 250 * time.Millisecond

// State is a sandboxed Lua interpreter that action modules are loaded into.
type State struct {
	L *lua.LState

	timeout time.Duration
	log     *logging.Logger
	closed  bool
}

// Option configures a State.
type Option func(*State)

// WithCallTimeout bounds each handler call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// WithLogger sets the logger used for script errors and the Lua log function.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		s.log = l
	}
}

// NewState creates a sandboxed state.
func NewState(opts ...Option) *State {
	s := &State{
		timeout: DefaultCallTimeout,
		log:     logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("script")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.RegisterFunc("log", s.luaLog)

	return s
}

// openSafeLibraries opens the libraries modules may use and strips the
// functions that load code from disk or strings.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// RegisterFunc exposes a Go function to modules as a global.
func (s *State) RegisterFunc(name string, fn lua.LGFunction) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.NewFunction(fn))
}

// Close releases the interpreter. Handlers loaded from s stop working.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

// Closed reports whether Close has been called.
func (s *State) Closed() bool {
	return s.closed
}

// luaLog implements log(msg) for modules.
func (s *State) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.log.Info("%s", strings.Join(parts, " "))
	return 0
}

// call invokes fn with args under the call timeout and returns its first result.
func (s *State) call(fn *lua.LFunction, args ...lua.LValue) (ret lua.LValue, err error) {
	if s.closed {
		return lua.LNil, ErrStateClosed
	}

	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	ret = s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}
