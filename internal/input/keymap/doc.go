// Package keymap turns declarative key bindings into hotkey definitions.
//
// A Keymap is an ordered list of bindings, each mapping a key combination
// to a named action. Order is significant: when two bindings share a
// combination only the first fires, and Duplicates reports the rest.
//
// # Key Combination Formats
//
//	"?"        - Single key
//	"Ctrl+K"   - Control and K
//	"<C-k>"    - Control and K (angle bracket notation)
//	"Alt++"    - Alt and the plus key
//	"Space"    - The space bar
//
// # Usage
//
//	actions := keymap.NewActions()
//	actions.MustRegister("palette.open", openPalette)
//
//	km, err := keymap.NewLoader().LoadFile("keys.toml")
//	if err != nil {
//	    return err
//	}
//	defs, err := keymap.Resolve(keymap.Merge(keymap.DefaultKeymap(), km), actions)
//	if err != nil {
//	    return err
//	}
//	hk := hotkey.New(defs)
//
// Keymap files may be TOML, YAML or JSON, chosen by extension.
package keymap
