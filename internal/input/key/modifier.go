package key

import "strings"

// Modifier is a bit set of modifier keys held with an input.
type Modifier uint8

const (
	ModNone Modifier = 0

	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns m with mod removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// String returns a long form such as "Ctrl+Alt".
func (m Modifier) String() string {
	return m.join([4]string{"Ctrl", "Alt", "Shift", "Meta"}, "+")
}

// ShortString returns a Vim-like form such as "C-A".
func (m Modifier) ShortString() string {
	return m.join([4]string{"C", "A", "S", "M"}, "-")
}

func (m Modifier) join(names [4]string, sep string) string {
	var parts []string
	for i, mod := range [4]Modifier{ModCtrl, ModAlt, ModShift, ModMeta} {
		if m.Has(mod) {
			parts = append(parts, names[i])
		}
	}
	return strings.Join(parts, sep)
}

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"a":       ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
	"win":     ModMeta,
	"m":       ModMeta,
	"d":       ModMeta, // Vim's notation for command
}

// ModifierFromName returns the modifier for a name (case-insensitive), or ModNone.
func ModifierFromName(name string) Modifier {
	return modifierNames[strings.ToLower(strings.TrimSpace(name))]
}
