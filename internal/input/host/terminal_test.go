package host

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/binding"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

type seen struct {
	input key.Input
	state action.State
	x, y  int
}

func newTestTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen, *Registry) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init error = %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 5)

	r := NewRegistry(logging.Null)
	return NewTerminal(screen, r, WithTerminalLogger(logging.Null)), screen, r
}

func watch(r *Registry, name string, d action.Decision, out *[]seen, specs ...string) {
	r.Bind(name, func(_ string, state action.State, ev action.Event) action.Decision {
		*out = append(*out, seen{ev.Input, state, ev.X, ev.Y})
		return d
	}, key.MustParseAll(specs...))
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want string
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), "j"},
		{"upper", tcell.NewEventKey(tcell.KeyRune, 'J', tcell.ModNone), "J"},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), "<A-x>"},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "Enter"},
		{"f5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), "F5"},
		{"shift up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModShift), "<S-Up>"},
		{"ctrl s", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl), "<C-s>"},
		{"ctrl upper rune", tcell.NewEventKey(tcell.KeyRune, 'S', tcell.ModCtrl), "<C-s>"},
		{"ctrl s no mod", tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModNone), "<C-s>"},
		{"backspace2", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), "BS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertKey(tt.ev)
			if !ok {
				t.Fatal("not converted")
			}
			if want := key.MustParse(tt.want); got != want {
				t.Errorf("ConvertKey = %v, want %v", got, want)
			}
		})
	}
}

func TestTerminal_KeyIsBeginThenEnd(t *testing.T) {
	term, _, r := newTestTerminal(t)
	var got []seen
	watch(r, "k", action.Sink, &got, "k")

	if term.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone)) {
		t.Error("plain key reported as quit")
	}

	k := key.MustParse("k")
	want := []seen{{k, action.StateBegin, 0, 0}, {k, action.StateEnd, 0, 0}}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestTerminal_QuitOnlyWhenUnsunk(t *testing.T) {
	term, _, r := newTestTerminal(t)
	ctrlC := tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)

	if !term.HandleEvent(ctrlC) {
		t.Error("unbound Ctrl+C did not quit")
	}

	var got []seen
	watch(r, "copy", action.Sink, &got, "<C-c>")
	if term.HandleEvent(ctrlC) {
		t.Error("sunk Ctrl+C quit")
	}
}

func TestTerminal_MouseHoldLifecycle(t *testing.T) {
	term, _, r := newTestTerminal(t)
	var got []seen
	watch(r, "m1", action.Sink, &got, "Mouse1")

	term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	term.HandleEvent(tcell.NewEventMouse(3, 2, tcell.Button1, tcell.ModNone))
	term.HandleEvent(tcell.NewEventMouse(3, 2, tcell.ButtonNone, tcell.ModNone))
	term.HandleEvent(tcell.NewEventMouse(5, 2, tcell.ButtonNone, tcell.ModNone))

	m1 := key.MustParse("Mouse1")
	want := []seen{
		{m1, action.StateBegin, 1, 1},
		{m1, action.StateChange, 3, 2},
		{m1, action.StateEnd, 3, 2},
	}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestTerminal_FocusLossCancelsHeldButtons(t *testing.T) {
	term, _, r := newTestTerminal(t)
	var got []seen
	watch(r, "m2", action.Sink, &got, "Mouse2")

	term.HandleEvent(tcell.NewEventMouse(2, 2, tcell.Button2, tcell.ModNone))
	term.HandleEvent(tcell.NewEventFocus(false))
	term.HandleEvent(tcell.NewEventMouse(2, 2, tcell.ButtonNone, tcell.ModNone))

	m2 := key.MustParse("Mouse2")
	want := []seen{
		{m2, action.StateBegin, 2, 2},
		{m2, action.StateCancel, 2, 2},
	}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestTerminal_ReleaseKeepsPressModifiers(t *testing.T) {
	term, _, r := newTestTerminal(t)
	var got []seen
	watch(r, "m1", action.Sink, &got, "Mouse1")
	watch(r, "shifted", action.Sink, &got, "<S-Mouse1>")

	term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	term.HandleEvent(tcell.NewEventMouse(2, 1, tcell.Button1, tcell.ModShift))
	term.HandleEvent(tcell.NewEventMouse(2, 1, tcell.ButtonNone, tcell.ModShift))

	m1 := key.MustParse("Mouse1")
	want := []seen{
		{m1, action.StateBegin, 1, 1},
		{m1, action.StateChange, 2, 1},
		{m1, action.StateEnd, 2, 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestTerminal_FocusLossCancelsWithPressModifiers(t *testing.T) {
	term, _, r := newTestTerminal(t)
	var got []seen
	watch(r, "sm2", action.Sink, &got, "<S-Mouse2>")

	term.HandleEvent(tcell.NewEventMouse(4, 3, tcell.Button2, tcell.ModShift))
	term.HandleEvent(tcell.NewEventFocus(false))
	term.HandleEvent(tcell.NewEventFocus(false))

	sm2 := key.MustParse("<S-Mouse2>")
	want := []seen{
		{sm2, action.StateBegin, 4, 3},
		{sm2, action.StateCancel, 4, 3},
	}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestTerminal_ChordLifecycle(t *testing.T) {
	term, _, r := newTestTerminal(t)
	fired := 0
	inner := binding.New(r, []action.Handler{
		action.Begin("fire", key.MustParseAll("x"), func(action.Event) { fired++ }),
	}, binding.WithLogger(logging.Null))
	root := binding.New(r, []action.Handler{
		inner.CreateBindAction("hold", key.MustParseAll("Mouse1")),
	}, binding.WithLogger(logging.Null))
	root.Enter()

	press := func() { term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone)) }
	x := tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)

	press()
	if !inner.Bound() {
		t.Fatal("inner not entered after press")
	}
	term.HandleEvent(x)
	term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModCtrl))
	if inner.Bound() {
		t.Error("inner still entered after release")
	}
	term.HandleEvent(x)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}

	press()
	if !inner.Bound() {
		t.Fatal("inner not entered after second press")
	}
	term.HandleEvent(tcell.NewEventFocus(false))
	if inner.Bound() {
		t.Error("inner still entered after focus loss")
	}

	// The release after focus returns is stray and must not re-enter.
	term.HandleEvent(tcell.NewEventFocus(true))
	term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModNone))
	if inner.Bound() {
		t.Error("inner entered by stray release")
	}
}

func TestTerminal_Status(t *testing.T) {
	term, screen, _ := newTestTerminal(t)
	term.Status("hi")

	cells, w, _ := screen.GetContents()
	if w != 40 {
		t.Fatalf("width = %d", w)
	}
	if string(cells[0].Runes) != "h" || string(cells[1].Runes) != "i" || string(cells[2].Runes) != " " {
		t.Errorf("status row = %q%q%q", cells[0].Runes, cells[1].Runes, cells[2].Runes)
	}
}

func TestTerminal_RunStopsOnQuit(t *testing.T) {
	term, screen, r := newTestTerminal(t)
	var got []seen
	watch(r, "j", action.Sink, &got, "j")

	reloads := make(chan struct{}, 1)
	reloaded := 0
	reloads <- struct{}{}

	screen.InjectKey(tcell.KeyRune, 'j', tcell.ModNone)
	screen.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := term.Run(ctx, reloads, func() { reloaded++ }); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("j events = %v, want begin and end", got)
	}
	if reloaded > 1 {
		t.Errorf("reloaded = %d", reloaded)
	}
}

func TestTerminal_RunStopsOnContext(t *testing.T) {
	term, _, _ := newTestTerminal(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := term.Run(ctx, nil, nil); err != context.Canceled {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}
