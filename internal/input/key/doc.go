// Package key defines the input identifiers that actions bind to.
//
// An Input is a comparable value naming one physical input: a special key,
// a character, or a mouse button, together with the modifiers held with it.
// Inputs are parsed from compact specifications:
//
//	key.MustParse("j")        // character
//	key.MustParse("<C-s>")    // Vim notation
//	key.MustParse("Ctrl+K")   // modifier notation
//	key.MustParse("Mouse1")   // primary mouse button
//
// Because Input is comparable it can be used directly as a map key, which is
// how hosts index their bindings.
package key
