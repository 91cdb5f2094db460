package key

import "strings"

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta
)

// Has reports whether m includes mod.
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

// pressOrder lists the modifiers in the order a chord presses them, with
// their key names and display names.
var pressOrder = []struct {
	mod     Modifier
	name    string
	display string
}{
	{ModCtrl, Control, "Ctrl"},
	{ModAlt, Alt, "Alt"},
	{ModShift, Shift, "Shift"},
	{ModMeta, Meta, "Meta"},
}

// String returns a human-readable representation like "Ctrl+Alt".
func (m Modifier) String() string {
	var parts []string
	for _, p := range pressOrder {
		if m.Has(p.mod) {
			parts = append(parts, p.display)
		}
	}
	return strings.Join(parts, "+")
}

// Names returns the key names of the held modifiers in press order
// (control, alt, shift, meta). These are the names a key set holds
// while the modifier is down.
func (m Modifier) Names() []string {
	var names []string
	for _, p := range pressOrder {
		if m.Has(p.mod) {
			names = append(names, p.name)
		}
	}
	return names
}

// Name returns the key name of a single modifier, or "" when m is not
// exactly one modifier.
func (m Modifier) Name() string {
	for _, p := range pressOrder {
		if m == p.mod {
			return p.name
		}
	}
	return ""
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"win":     ModMeta,
	"super":   ModMeta,
}

// vimModifierMap holds the single-letter modifiers of <C-x> notation.
var vimModifierMap = map[string]Modifier{
	"c": ModCtrl,
	"a": ModAlt,
	"s": ModShift,
	"m": ModMeta,
	"d": ModMeta, // Vim uses D for command/meta
}

// ModifierFromName returns the Modifier for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierFromName(name string) Modifier {
	if m, ok := modifierNameMap[strings.ToLower(name)]; ok {
		return m
	}
	return ModNone
}

// IsModifier reports whether name (already normalized) is a modifier key.
func IsModifier(name string) bool {
	switch name {
	case Control, Alt, Shift, Meta:
		return true
	}
	return false
}
