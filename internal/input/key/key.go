package key

import (
	"fmt"
	"strings"
)

// Key names as reported by KeyboardEvent.key, lowercased. Every key set
// and every hotkey definition holds names in this form.
const (
	Control = "control"
	Shift   = "shift"
	Alt     = "alt"
	Meta    = "meta"

	Escape    = "escape"
	Enter     = "enter"
	Tab       = "tab"
	Backspace = "backspace"
	Delete    = "delete"
	Insert    = "insert"
	Home      = "home"
	End       = "end"
	PageUp    = "pageup"
	PageDown  = "pagedown"

	ArrowUp    = "arrowup"
	ArrowDown  = "arrowdown"
	ArrowLeft  = "arrowleft"
	ArrowRight = "arrowright"

	Pause       = "pause"
	PrintScreen = "printscreen"
	ScrollLock  = "scrolllock"
	NumLock     = "numlock"
	CapsLock    = "capslock"

	// Space is a literal blank, matching the browser's key value.
	Space = " "

	// Plus is the literal plus key; "+" also separates combo parts.
	Plus = "+"
)

// keyNameMap maps key names and aliases (lowercase) to canonical names.
var keyNameMap = map[string]string{
	"esc":         Escape,
	"escape":      Escape,
	"enter":       Enter,
	"return":      Enter,
	"cr":          Enter,
	"tab":         Tab,
	"backspace":   Backspace,
	"bs":          Backspace,
	"delete":      Delete,
	"del":         Delete,
	"insert":      Insert,
	"ins":         Insert,
	"home":        Home,
	"end":         End,
	"pageup":      PageUp,
	"pgup":        PageUp,
	"pagedown":    PageDown,
	"pgdn":        PageDown,
	"up":          ArrowUp,
	"arrowup":     ArrowUp,
	"down":        ArrowDown,
	"arrowdown":   ArrowDown,
	"left":        ArrowLeft,
	"arrowleft":   ArrowLeft,
	"right":       ArrowRight,
	"arrowright":  ArrowRight,
	"space":       Space,
	"spacebar":    Space,
	"plus":        Plus,
	"pause":       Pause,
	"printscreen": PrintScreen,
	"scrolllock":  ScrollLock,
	"numlock":     NumLock,
	"capslock":    CapsLock,
}

// Normalize lowercases a raw key name. It is the only transformation
// applied to names arriving from key events.
func Normalize(name string) string {
	return strings.ToLower(name)
}

// FromName resolves a key name or alias (case-insensitive) to its
// canonical name. Unknown names are returned lowercased, so any single
// character or function key name passes through unchanged.
func FromName(name string) string {
	if name == Space {
		return Space
	}
	n := strings.ToLower(strings.TrimSpace(name))
	if mod, ok := modifierNameMap[n]; ok {
		return mod.Name()
	}
	if k, ok := keyNameMap[n]; ok {
		return k
	}
	return n
}

// FunctionKey returns the name of function key n (F1 is "f1").
func FunctionKey(n int) string {
	return fmt.Sprintf("f%d", n)
}

// Label returns the display label for a key name: the space key reads
// "Space" and everything else is upper-cased.
func Label(name string) string {
	if name == Space {
		return "Space"
	}
	return strings.ToUpper(name)
}

// Labels returns the display labels for names, preserving order.
func Labels(names []string) []string {
	labels := make([]string, len(names))
	for i, n := range names {
		labels[i] = Label(n)
	}
	return labels
}

// FormatCombo renders names for display, e.g. "CONTROL + K".
func FormatCombo(names []string) string {
	return strings.Join(Labels(names), " + ")
}
