package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty input specification")
	ErrInvalidSpec = errors.New("invalid input specification")
)

// Parse parses an input specification.
//
// Supported formats:
//   - Single character: "a", "A" (implicit Shift), "@"
//   - Key and button names: "Enter", "Esc", "F5", "Mouse1"
//   - Modifier notation: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Vim notation: "<C-s>", "<A-F4>", "<CR>", "<Space>"
func Parse(spec string) (Input, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Input{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseParts(spec[1:len(spec)-1], "-")
	}
	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseParts(spec, "+")
	}
	return parseKey(spec, ModNone)
}

// parseParts parses "mod<sep>mod<sep>key"; the last part is the key.
func parseParts(spec, sep string) (Input, error) {
	parts := strings.Split(spec, sep)
	keyPart := parts[len(parts)-1]

	// "C--" and "Ctrl++" name the separator itself.
	if keyPart == "" && len(parts) > 2 && parts[len(parts)-2] == "" {
		keyPart = sep
		parts = parts[:len(parts)-1]
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Input{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return parseKey(keyPart, mods)
}

func parseKey(keyPart string, mods Modifier) (Input, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Input{}, fmt.Errorf("%w: missing key", ErrInvalidSpec)
	}

	lower := strings.ToLower(keyPart)
	if k := KeyFromName(lower); k != KeyNone {
		return Special(k, mods), nil
	}
	if r, ok := runeAliases[lower]; ok {
		return Rune(r, mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) != 1 {
		if hint := Suggest(keyPart); hint != "" {
			return Input{}, fmt.Errorf("%w: unknown key %q (did you mean %q?)", ErrInvalidSpec, keyPart, hint)
		}
		return Input{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}

	r := runes[0]
	switch {
	case mods.Has(ModCtrl):
		// Terminals cannot distinguish C-a from C-A.
		r = unicode.ToLower(r)
	case unicode.IsUpper(r):
		mods = mods.With(ModShift)
	}
	return Rune(r, mods), nil
}

// MustParse parses spec and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Input {
	in, err := Parse(spec)
	if err != nil {
		panic("invalid input specification: " + spec + ": " + err.Error())
	}
	return in
}

// ParseAll parses every spec, failing on the first invalid one.
func ParseAll(specs ...string) ([]Input, error) {
	inputs := make([]Input, 0, len(specs))
	for _, s := range specs {
		in, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// MustParseAll is ParseAll that panics on error.
func MustParseAll(specs ...string) []Input {
	inputs, err := ParseAll(specs...)
	if err != nil {
		panic(err)
	}
	return inputs
}
