// Package hint provides the keyboard shortcut hint panel.
//
// The panel lists every registered shortcut with its key labels and
// highlights the one whose combination is the active hotkey. It appears
// on its own a short while after Start, hides itself again later, and
// from then on the toggle key flips it.
//
// Panel holds the state and timers; Draw renders a snapshot onto any
// backend.Canvas, placed in the bottom-right corner.
//
//	panel := hint.New(hint.ShortcutsFrom(defs))
//	release := panel.Attach(source)
//	defer release()
//	panel.Start()
//	defer panel.Close()
package hint
