// Package hotkey tracks held keys and matches them against registered
// hotkey combinations.
//
// The package has three parts:
//
//   - Tracker: keeps the set of keys currently held down. Key-downs whose
//     target is a text-entry control are ignored; key-ups are always applied.
//   - Matcher: on every key set change, compares the sorted, "+"-joined form
//     of the held keys against each definition in registration order and
//     fires the first match. The matched combination is exposed as the
//     active indicator, which clears itself after a short display window.
//   - Hotkeys: a handle composing both, attached to one or more key sources
//     and released as a unit with Close.
//
// # Level-Triggered Matching
//
// Matching compares state, not press edges. Releasing one key of a
// three-key chord that leaves a registered two-key chord held fires the
// two-key hotkey. A callback fires once per transition into its exact
// state; repeating a key-down for a key already held is not a transition.
//
// # Usage
//
//	hk := hotkey.New([]hotkey.Definition{
//	    {Keys: []string{"control", "k"}, Callback: openPalette, Description: "Open palette"},
//	    {Keys: []string{"?"}, Callback: toggleHint, Description: "Toggle shortcuts"},
//	})
//	defer hk.Close()
//
//	if err := hk.Attach(source); err != nil {
//	    return err
//	}
//
// # Threading
//
// Events are processed one at a time in delivery order. Callbacks run
// synchronously on the processing path, so a slow callback delays the
// next event. Callbacks must not feed events back into the same Hotkeys
// synchronously.
package hotkey
