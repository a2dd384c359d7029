package key

import (
	"strings"
	"unicode"
)

// Input identifies a single physical input. It is comparable.
type Input struct {
	// Key is the key or button. KeyRune for characters.
	Key Key

	// Rune is the character when Key is KeyRune.
	Rune rune

	// Modifiers held with the input.
	Modifiers Modifier
}

// Rune returns the input for character r.
func Rune(r rune, mods Modifier) Input {
	return Input{Key: KeyRune, Rune: r, Modifiers: mods}
}

// Special returns the input for a non-character key or button.
func Special(k Key, mods Modifier) Input {
	return Input{Key: k, Modifiers: mods}
}

// IsRune reports whether this is a character input.
func (in Input) IsRune() bool {
	return in.Key == KeyRune && in.Rune != 0
}

// IsZero reports whether in is the zero Input.
func (in Input) IsZero() bool {
	return in == Input{}
}

// String returns the canonical specification; Parse(in.String()) == in.
// Unmodified characters render bare ("j"); everything else uses Vim notation.
func (in Input) String() string {
	mods := in.Modifiers
	if in.IsRune() && unicode.IsUpper(in.Rune) {
		// Shift is implied by the upper-case character.
		mods = mods.Without(ModShift)
	}

	name := in.Key.String()
	if in.Key == KeyRune {
		switch in.Rune {
		case ' ':
			name = "Space"
		case '<':
			name = "lt"
		case '>':
			name = "gt"
		case '-':
			name = "minus"
		default:
			name = string(in.Rune)
		}
		if mods == ModNone && (len(name) == 1 || in.Rune > unicode.MaxASCII) {
			return name
		}
	}

	if mods == ModNone {
		return "<" + name + ">"
	}
	return "<" + mods.ShortString() + "-" + name + ">"
}

// Strings formats a list of inputs for logging.
func Strings(inputs []Input) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = in.String()
	}
	return strings.Join(parts, " ")
}
