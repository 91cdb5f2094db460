// Package key provides key names, modifiers, and combination parsing for
// the input system.
//
// Key names follow KeyboardEvent.key lowercased: "control", "shift",
// "alt", "meta", "escape", "arrowup", "f5", single characters such as
// "k" or "?", and a literal " " for the space bar.
//
// # Combination Specifications
//
// Combinations can be written in multiple formats:
//
//   - Single keys: "?", "k", "Enter", "Space"
//   - With modifiers: "Ctrl+K", "Alt+F4", "Ctrl+Shift+P"
//   - Vim-style: "<C-k>", "<A-f>", "<C-S-p>", "<CR>", "<Esc>"
//
// ParseCombo resolves aliases, so "Ctrl+K", "<C-k>" and "control+k" all
// produce ["control", "k"]. Order is kept for display only; matching is
// order-independent.
package key
