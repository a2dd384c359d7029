package app

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/host"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func notifyModule(input, msg string) string {
	return `return { inputs = {"` + input + `"}, state = "begin", handle = function(ev) notify("` + msg + `") end }`
}

type fixture struct {
	app      *App
	reg      *host.Registry
	rootDir  string
	layerDir string
	msgs     []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		reg:      host.NewRegistry(logging.Null),
		rootDir:  t.TempDir(),
		layerDir: t.TempDir(),
	}
	writeFiles(t, f.rootDir, map[string]string{"count.lua": notifyModule("k", "count")})
	writeFiles(t, f.layerDir, map[string]string{"jump.lua": notifyModule("j", "jump")})

	cfg := config.Default()
	cfg.ActionsDir = f.rootDir
	cfg.Chords = []config.Chord{{Name: "layer", Inputs: []string{"Mouse1"}, ActionsDir: f.layerDir}}

	a, err := New(Options{
		Config: cfg,
		Host:   f.reg,
		Logger: logging.Null,
		Notify: func(msg string) { f.msgs = append(f.msgs, msg) },
	})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	f.app = a
	return f
}

func (f *fixture) press(spec string, state action.State) bool {
	return f.reg.Deliver(action.NewEvent(key.MustParse(spec), state))
}

func TestNew_NoHost(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrNoHost) {
		t.Errorf("New error = %v, want ErrNoHost", err)
	}
}

func TestNew_MissingActionsDir(t *testing.T) {
	cfg := config.Default()
	cfg.ActionsDir = filepath.Join(t.TempDir(), "missing")
	_, err := New(Options{Config: cfg, Host: host.NewRegistry(logging.Null), Logger: logging.Null})
	if err == nil {
		t.Fatal("New should fail for a missing actions directory")
	}
}

func TestApp_RootAndChord(t *testing.T) {
	f := newFixture(t)

	if !f.app.Root().Bound() {
		t.Fatal("root not entered")
	}
	if !f.press("k", action.StateBegin) {
		t.Error("k not sunk")
	}
	if f.press("j", action.StateBegin) {
		t.Error("j sunk before chord")
	}

	if !f.press("Mouse1", action.StateBegin) {
		t.Error("chord press not sunk")
	}
	layer, ok := f.app.Layer("layer")
	if !ok || !layer.Bound() {
		t.Fatal("layer not entered")
	}
	f.press("j", action.StateBegin)

	if !f.press("Mouse1", action.StateEnd) {
		t.Error("chord release not sunk")
	}
	if layer.Bound() || f.reg.Bound("jump") {
		t.Error("layer still bound after release")
	}

	want := []string{"count", "jump"}
	if !slices.Equal(f.msgs, want) {
		t.Errorf("msgs = %v, want %v", f.msgs, want)
	}
}

func TestApp_Reload(t *testing.T) {
	f := newFixture(t)
	old := f.app.Root()

	writeFiles(t, f.rootDir, map[string]string{"count.lua": notifyModule("k", "recount")})
	if err := f.app.Reload(); err != nil {
		t.Fatalf("Reload error = %v", err)
	}
	if old.Bound() {
		t.Error("old root still bound")
	}
	if f.app.Root() == old || !f.app.Root().Bound() {
		t.Error("new root not entered")
	}

	f.press("k", action.StateBegin)
	if !slices.Equal(f.msgs, []string{"recount"}) {
		t.Errorf("msgs = %v", f.msgs)
	}
}

func TestApp_ReloadFailureKeepsBindings(t *testing.T) {
	f := newFixture(t)
	old := f.app.Root()

	writeFiles(t, f.rootDir, map[string]string{"broken.lua": "return {"})
	if err := f.app.Reload(); err == nil {
		t.Fatal("Reload should fail")
	}
	if f.app.Root() != old || !old.Bound() {
		t.Error("failed reload replaced the root")
	}

	f.press("k", action.StateBegin)
	if !slices.Equal(f.msgs, []string{"count"}) {
		t.Errorf("msgs = %v", f.msgs)
	}
}

func TestApp_ReloadWhileChordHeld(t *testing.T) {
	f := newFixture(t)

	f.press("Mouse1", action.StateBegin)
	if !f.reg.Bound("jump") {
		t.Fatal("layer not entered")
	}
	if err := f.app.Reload(); err != nil {
		t.Fatal(err)
	}
	if f.reg.Bound("jump") {
		t.Error("layer survived reload")
	}

	// The new chord never saw the press; its release passes through.
	if f.press("Mouse1", action.StateEnd) {
		t.Error("release sunk by fresh chord")
	}
}

func TestApp_PriorityOrder(t *testing.T) {
	f := newFixture(t)

	writeFiles(t, f.rootDir, map[string]string{
		"a.lua":           notifyModule("x", "a"),
		"b.lua":           notifyModule("x", "b"),
		"attributes.toml": "[attributes.a]\npriority = 1\n[attributes.b]\npriority = 2\n",
	})
	if err := f.app.Reload(); err != nil {
		t.Fatal(err)
	}

	f.press("x", action.StateBegin)
	if !slices.Equal(f.msgs, []string{"a"}) {
		t.Errorf("msgs = %v, want [a]", f.msgs)
	}
}

func TestApp_Close(t *testing.T) {
	f := newFixture(t)

	if err := f.app.Close(); err != nil {
		t.Fatal(err)
	}
	if n := f.reg.Len(); n != 0 {
		t.Errorf("registry has %d bindings after Close: %v", n, f.reg.Names())
	}
	if err := f.app.Reload(); !errors.Is(err, ErrClosed) {
		t.Errorf("Reload error = %v, want ErrClosed", err)
	}
	if err := f.app.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if f.app.Root() != nil {
		t.Error("Root after Close should be nil")
	}
}

func TestApp_NestedChord(t *testing.T) {
	rootDir, outerDir, innerDir := t.TempDir(), t.TempDir(), t.TempDir()
	writeFiles(t, rootDir, map[string]string{"count.lua": notifyModule("k", "count")})
	writeFiles(t, outerDir, map[string]string{"jump.lua": notifyModule("j", "jump")})
	writeFiles(t, innerDir, map[string]string{"deep.lua": notifyModule("d", "deep")})

	cfg := config.Default()
	cfg.ActionsDir = rootDir
	cfg.Chords = []config.Chord{
		{Name: "outer", Inputs: []string{"Mouse1"}, ActionsDir: outerDir},
		{Name: "inner", Inputs: []string{"Mouse2"}, ActionsDir: innerDir, Parent: "outer"},
	}

	reg := host.NewRegistry(logging.Null)
	var msgs []string
	a, err := New(Options{
		Config: cfg,
		Host:   reg,
		Logger: logging.Null,
		Notify: func(msg string) { msgs = append(msgs, msg) },
	})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	press := func(spec string, state action.State) bool {
		return reg.Deliver(action.NewEvent(key.MustParse(spec), state))
	}

	if press("Mouse2", action.StateBegin) {
		t.Error("inner chord active without its parent")
	}
	press("Mouse2", action.StateEnd)

	press("Mouse1", action.StateBegin)
	if !press("Mouse2", action.StateBegin) {
		t.Fatal("inner chord not bound inside outer")
	}
	inner, _ := a.Layer("inner")
	if !inner.Bound() {
		t.Fatal("inner layer not entered")
	}
	press("d", action.StateBegin)

	press("Mouse2", action.StateEnd)
	press("Mouse1", action.StateEnd)
	if inner.Bound() || reg.Bound("deep") || reg.Bound("jump") {
		t.Errorf("layers still bound: %v", reg.Names())
	}
	if !slices.Equal(msgs, []string{"deep"}) {
		t.Errorf("msgs = %v, want [deep]", msgs)
	}
	if got := reg.Names(); !slices.Equal(got, []string{"count", "outer"}) {
		t.Errorf("Names() = %v, want [count outer]", got)
	}
}
