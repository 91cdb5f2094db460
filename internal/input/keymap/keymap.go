package keymap

import (
	"fmt"
)

// Keymap holds an ordered list of key bindings. Order is significant:
// when two bindings share a combination, the earlier one fires.
type Keymap struct {
	// Name is the keymap identifier.
	Name string `toml:"name" yaml:"name" json:"name"`

	// Source indicates where this keymap was defined.
	// Examples: "default", "user", "script:hotkeys.lua"
	Source string `toml:"source,omitempty" yaml:"source,omitempty" json:"source,omitempty"`

	// Bindings are the key-to-action mappings.
	Bindings []Binding `toml:"bindings" yaml:"bindings" json:"bindings"`
}

// NewKeymap creates a new keymap with the given name.
func NewKeymap(name string) *Keymap {
	return &Keymap{
		Name:     name,
		Bindings: make([]Binding, 0),
	}
}

// WithSource sets the source for this keymap.
func (k *Keymap) WithSource(source string) *Keymap {
	k.Source = source
	return k
}

// Add adds a binding to this keymap.
func (k *Keymap) Add(keys, action string) *Keymap {
	k.Bindings = append(k.Bindings, Binding{
		Keys:   keys,
		Action: action,
	})
	return k
}

// AddBinding adds a fully configured binding to this keymap.
func (k *Keymap) AddBinding(binding Binding) *Keymap {
	k.Bindings = append(k.Bindings, binding)
	return k
}

// Validate checks that all bindings in the keymap are valid.
func (k *Keymap) Validate() error {
	for i, b := range k.Bindings {
		if b.Keys == "" {
			return fmt.Errorf("binding %d: empty keys", i)
		}
		if b.Action == "" {
			return fmt.Errorf("binding %d (%s): empty action", i, b.Keys)
		}
		if _, err := b.Combo(); err != nil {
			return fmt.Errorf("binding %d (%s): %w", i, b.Keys, err)
		}
	}
	return nil
}

// Clone creates a deep copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	clone := &Keymap{
		Name:     k.Name,
		Source:   k.Source,
		Bindings: make([]Binding, len(k.Bindings)),
	}
	copy(clone.Bindings, k.Bindings)
	return clone
}

// Merge returns a keymap where each binding in override replaces the base
// binding with the same combination in place; the remaining override
// bindings are appended in order. Neither input is modified.
func Merge(base, override *Keymap) *Keymap {
	if base == nil {
		base = NewKeymap("")
	}
	merged := base.Clone()
	if override == nil {
		return merged
	}
	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Source != "" {
		merged.Source = override.Source
	}

	index := make(map[string]int, len(merged.Bindings))
	for i, b := range merged.Bindings {
		if c := b.Canonical(); c != "" {
			if _, exists := index[c]; !exists {
				index[c] = i
			}
		}
	}

	for _, b := range override.Bindings {
		if i, ok := index[b.Canonical()]; ok && b.Canonical() != "" {
			merged.Bindings[i] = b
			continue
		}
		merged.Bindings = append(merged.Bindings, b)
	}
	return merged
}

// Conflict lists bindings that share a combination. Only the first one
// can ever fire.
type Conflict struct {
	Canonical string
	Bindings  []Binding
}

// Conflicts reports combinations bound more than once, in the order the
// combinations first appear.
func (k *Keymap) Conflicts() []Conflict {
	groups := make(map[string][]Binding)
	order := make([]string, 0)
	for _, b := range k.Bindings {
		c := b.Canonical()
		if c == "" {
			continue
		}
		if _, seen := groups[c]; !seen {
			order = append(order, c)
		}
		groups[c] = append(groups[c], b)
	}

	var conflicts []Conflict
	for _, c := range order {
		if len(groups[c]) > 1 {
			conflicts = append(conflicts, Conflict{Canonical: c, Bindings: groups[c]})
		}
	}
	return conflicts
}
