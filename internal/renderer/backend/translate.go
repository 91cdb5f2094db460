package backend

import (
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/key"
)

// namedKeys maps tcell special keys to key names.
var namedKeys = map[tcell.Key]string{
	tcell.KeyEscape:     key.Escape,
	tcell.KeyEnter:      key.Enter,
	tcell.KeyTab:        key.Tab,
	tcell.KeyBackspace:  key.Backspace,
	tcell.KeyBackspace2: key.Backspace,
	tcell.KeyDelete:     key.Delete,
	tcell.KeyInsert:     key.Insert,
	tcell.KeyHome:       key.Home,
	tcell.KeyEnd:        key.End,
	tcell.KeyPgUp:       key.PageUp,
	tcell.KeyPgDn:       key.PageDown,
	tcell.KeyUp:         key.ArrowUp,
	tcell.KeyDown:       key.ArrowDown,
	tcell.KeyLeft:       key.ArrowLeft,
	tcell.KeyRight:      key.ArrowRight,
	tcell.KeyPause:      key.Pause,
	tcell.KeyPrint:      key.PrintScreen,
}

// KeyName resolves a terminal key press to a key name and the modifiers
// held with it. Uppercase letters report the lowercase letter with Shift
// held; other runes already carry Shift and report no Shift modifier.
// ok is false for keys that have no name.
func KeyName(k tcell.Key, r rune, mod tcell.ModMask) (name string, mods key.Modifier, ok bool) {
	mods = convertMod(mod)

	switch {
	case k == tcell.KeyRune:
		if r == 0 {
			return "", mods, false
		}
		if unicode.IsUpper(r) {
			return string(unicode.ToLower(r)), mods.With(key.ModShift), true
		}
		return string(r), mods.Without(key.ModShift), true

	case k == tcell.KeyBacktab:
		return key.Tab, mods.With(key.ModShift), true

	case k >= tcell.KeyF1 && k <= tcell.KeyF64:
		return key.FunctionKey(int(k-tcell.KeyF1) + 1), mods, true
	}

	// Tab, Enter, Backspace and Escape share codes with Ctrl+I, Ctrl+M,
	// Ctrl+H and Ctrl+[, so names win over the control range.
	if name, ok := namedKeys[k]; ok {
		return name, mods, true
	}

	switch {
	case k == tcell.KeyCtrlSpace:
		return key.Space, mods.With(key.ModCtrl), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return string(rune('a' + int(k-tcell.KeyCtrlA))), mods.With(key.ModCtrl), true
	}
	return "", mods, false
}

// Translate turns one terminal key press into the key-down and key-up
// events a keyboard would have produced: modifier downs, the key down,
// the key up, then modifier ups in reverse order. Terminals report
// presses only, so every chord is released immediately.
func Translate(ev *tcell.EventKey) []hotkey.Event {
	name, mods, ok := KeyName(ev.Key(), ev.Rune(), ev.Modifiers())
	if !ok {
		return nil
	}

	when := ev.When()
	if when.IsZero() {
		when = time.Now()
	}

	modNames := mods.Names()
	events := make([]hotkey.Event, 0, 2*len(modNames)+2)
	for _, m := range modNames {
		events = append(events, event(hotkey.KeyDown, m, when))
	}
	events = append(events, event(hotkey.KeyDown, name, when), event(hotkey.KeyUp, name, when))
	for i := len(modNames) - 1; i >= 0; i-- {
		events = append(events, event(hotkey.KeyUp, modNames[i], when))
	}
	return events
}

func event(t hotkey.EventType, name string, when time.Time) hotkey.Event {
	return hotkey.Event{Type: t, Key: name, Target: hotkey.TargetNone, Time: when}
}

// convertMod converts a tcell modifier mask.
func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}
