package key

import (
	"fmt"
	"strings"
)

// Key identifies a non-character key or a mouse button.
// Character keys use KeyRune with the character in Input.Rune.
type Key uint16

const (
	KeyNone Key = iota

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Mouse buttons. Unlike terminal keys, hosts can report their release,
	// which makes them usable as held chord inputs.
	KeyMouse1
	KeyMouse2
	KeyMouse3

	// KeyRune is used for character keys; the character is in Input.Rune.
	KeyRune
)

var keyNames = [...]string{
	KeyNone:      "None",
	KeyEscape:    "Esc",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "BS",
	KeyDelete:    "Del",
	KeyInsert:    "Ins",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyF1:        "F1",
	KeyF2:        "F2",
	KeyF3:        "F3",
	KeyF4:        "F4",
	KeyF5:        "F5",
	KeyF6:        "F6",
	KeyF7:        "F7",
	KeyF8:        "F8",
	KeyF9:        "F9",
	KeyF10:       "F10",
	KeyF11:       "F11",
	KeyF12:       "F12",
	KeyMouse1:    "Mouse1",
	KeyMouse2:    "Mouse2",
	KeyMouse3:    "Mouse3",
	KeyRune:      "Rune",
}

// String returns the canonical name of the key.
func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsFunctionKey reports whether k is F1 through F12.
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsMouse reports whether k is a mouse button.
func (k Key) IsMouse() bool {
	return k >= KeyMouse1 && k <= KeyMouse3
}

// keyAliases maps lower-case names, including Vim aliases, to keys.
var keyAliases = map[string]Key{
	"esc":       KeyEscape,
	"escape":    KeyEscape,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"cr":        KeyEnter,
	"tab":       KeyTab,
	"bs":        KeyBackspace,
	"backspace": KeyBackspace,
	"del":       KeyDelete,
	"delete":    KeyDelete,
	"ins":       KeyInsert,
	"insert":    KeyInsert,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pageup":    KeyPageUp,
	"pgup":      KeyPageUp,
	"pagedown":  KeyPageDown,
	"pgdn":      KeyPageDown,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"mouse1":    KeyMouse1,
	"mouse2":    KeyMouse2,
	"mouse3":    KeyMouse3,
	"lmb":       KeyMouse1,
	"rmb":       KeyMouse2,
	"mmb":       KeyMouse3,
}

func init() {
	for k := KeyF1; k <= KeyF12; k++ {
		keyAliases[strings.ToLower(k.String())] = k
	}
}

// runeAliases maps names to the character they stand for.
var runeAliases = map[string]rune{
	"space":  ' ',
	"lt":     '<',
	"gt":     '>',
	"bar":    '|',
	"bslash": '\\',
	"minus":  '-',
	"plus":   '+',
}

// KeyFromName returns the key for a name (case-insensitive), or KeyNone.
func KeyFromName(name string) Key {
	return keyAliases[strings.ToLower(strings.TrimSpace(name))]
}
