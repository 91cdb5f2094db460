package hotkey

// Definition registers a key combination and the action it triggers.
type Definition struct {
	// Keys is the combination to match. Order matters for display only.
	Keys []string

	// Callback runs when the held keys equal Keys.
	Callback func()

	// Description labels the hotkey for display.
	Description string
}

// Canonical returns the order-independent form of the definition's keys.
func (d Definition) Canonical() string {
	return Canonical(d.Keys)
}

// clone copies the key slice so later caller mutations cannot change
// what the matcher compares against.
func (d Definition) clone() Definition {
	keys := make([]string, len(d.Keys))
	copy(keys, d.Keys)
	d.Keys = keys
	return d
}

// compiled is a definition with its canonical form precomputed.
type compiled struct {
	def       Definition
	canonical string
}

func compile(defs []Definition) []compiled {
	out := make([]compiled, 0, len(defs))
	for _, d := range defs {
		d = d.clone()
		out = append(out, compiled{def: d, canonical: d.Canonical()})
	}
	return out
}
