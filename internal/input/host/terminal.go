package host

import (
	"context"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// Terminal feeds a Registry from a tcell screen.
//
// Terminals report key presses but not releases, so every key becomes a
// Begin immediately followed by an End. Mouse buttons report both, so they
// are the inputs that can be held: press is Begin, motion while held is
// Change, release is End, and losing focus cancels every held button.
type Terminal struct {
	screen   tcell.Screen
	registry *Registry
	log      *logging.Logger

	quit key.Input
	// held is the input delivered at Begin for each pressed button. Change,
	// End and Cancel reuse it so a modifier change mid-hold cannot strand
	// a binding.
	held [len(mouseButtons)]key.Input
	x, y int
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithQuitInput sets the input that stops Run when no binding sinks it.
// The default is Ctrl+C.
func WithQuitInput(in key.Input) TerminalOption {
	return func(t *Terminal) {
		t.quit = in
	}
}

// WithTerminalLogger sets the logger.
func WithTerminalLogger(l *logging.Logger) TerminalOption {
	return func(t *Terminal) {
		t.log = l
	}
}

// NewTerminal wraps an initialized screen.
func NewTerminal(screen tcell.Screen, registry *Registry, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen:   screen,
		registry: registry,
		log:      logging.Default(),
		quit:     key.MustParse("<C-c>"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithComponent("terminal")
	return t
}

// Registry returns the registry events are delivered to.
func (t *Terminal) Registry() *Registry {
	return t.registry
}

// Status writes msg on the first row of the screen.
func (t *Terminal) Status(msg string) {
	w, _ := t.screen.Size()
	col := 0
	for _, r := range msg {
		if col >= w {
			break
		}
		t.screen.SetContent(col, 0, r, nil, tcell.StyleDefault)
		col++
	}
	for ; col < w; col++ {
		t.screen.SetContent(col, 0, ' ', nil, tcell.StyleDefault)
	}
	t.screen.Show()
}

// Run delivers screen events until ctx is done or the quit input arrives
// unsunk. A value on reload calls onReload on the event goroutine, so
// reloading never overlaps a dispatch.
func (t *Terminal) Run(ctx context.Context, reload <-chan struct{}, onReload func()) error {
	events := make(chan tcell.Event, 16)
	stop := make(chan struct{})
	defer close(stop)
	go t.screen.ChannelEvents(events, stop)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case _, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			if onReload != nil {
				onReload()
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if t.HandleEvent(ev) {
				return nil
			}
		}
	}
}

// HandleEvent translates and delivers one tcell event. It reports whether
// the event was an unsunk quit input.
func (t *Terminal) HandleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		in, ok := ConvertKey(ev)
		if !ok {
			return false
		}
		sunk := t.registry.Deliver(action.Event{Input: in, State: action.StateBegin, Time: ev.When()})
		t.registry.Deliver(action.Event{Input: in, State: action.StateEnd, Time: ev.When()})
		return !sunk && in == t.quit

	case *tcell.EventMouse:
		t.handleMouse(ev)

	case *tcell.EventFocus:
		if !ev.Focused {
			t.cancelButtons()
		}

	case *tcell.EventResize:
		t.screen.Sync()
	}
	return false
}

var mouseButtons = [...]struct {
	mask tcell.ButtonMask
	key  key.Key
}{
	{tcell.Button1, key.KeyMouse1},
	{tcell.Button2, key.KeyMouse2},
	{tcell.Button3, key.KeyMouse3},
}

func (t *Terminal) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	mods := convertModifiers(ev.Modifiers())
	now := ev.Buttons()
	moved := x != t.x || y != t.y

	for i, b := range mouseButtons {
		was := !t.held[i].IsZero()
		is := now&b.mask != 0

		var state action.State
		switch {
		case is && !was:
			t.held[i] = key.Special(b.key, mods)
			state = action.StateBegin
		case was && !is:
			state = action.StateEnd
		case is && moved:
			state = action.StateChange
		default:
			continue
		}

		t.registry.Deliver(action.Event{
			Input: t.held[i],
			State: state,
			X:     x,
			Y:     y,
			Time:  ev.When(),
		})
		if state == action.StateEnd {
			t.held[i] = key.Input{}
		}
	}

	t.x, t.y = x, y
}

// cancelButtons sends Cancel for every held button. Focus events carry no
// timestamp, so the cancel is stamped with the current time.
func (t *Terminal) cancelButtons() {
	now := time.Now()
	for i := range mouseButtons {
		if t.held[i].IsZero() {
			continue
		}
		in := t.held[i]
		t.held[i] = key.Input{}
		t.registry.Deliver(action.Event{
			Input: in,
			State: action.StateCancel,
			X:     t.x,
			Y:     t.y,
			Time:  now,
		})
	}
}

var tcellKeys = map[tcell.Key]key.Key{
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyF1:         key.KeyF1,
	tcell.KeyF2:         key.KeyF2,
	tcell.KeyF3:         key.KeyF3,
	tcell.KeyF4:         key.KeyF4,
	tcell.KeyF5:         key.KeyF5,
	tcell.KeyF6:         key.KeyF6,
	tcell.KeyF7:         key.KeyF7,
	tcell.KeyF8:         key.KeyF8,
	tcell.KeyF9:         key.KeyF9,
	tcell.KeyF10:        key.KeyF10,
	tcell.KeyF11:        key.KeyF11,
	tcell.KeyF12:        key.KeyF12,
}

// ConvertKey converts a tcell key event to an input.
func ConvertKey(ev *tcell.EventKey) (key.Input, bool) {
	mods := convertModifiers(ev.Modifiers())

	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		switch {
		case mods.Has(key.ModCtrl):
			r = unicode.ToLower(r)
		case unicode.IsUpper(r):
			mods = mods.With(key.ModShift)
		}
		return key.Rune(r, mods), true
	}

	if k, ok := tcellKeys[ev.Key()]; ok {
		return key.Special(k, mods), true
	}

	// Control characters arrive as their own key codes.
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := rune('a' + int(ev.Key()-tcell.KeyCtrlA))
		return key.Rune(r, mods.With(key.ModCtrl)), true
	}
	if ev.Key() == tcell.KeyCtrlSpace {
		return key.Rune(' ', mods.With(key.ModCtrl)), true
	}

	return key.Input{}, false
}

func convertModifiers(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}
