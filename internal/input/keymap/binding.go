package keymap

import (
	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/key"
)

// Binding represents a single key-combination-to-action mapping.
type Binding struct {
	// Keys is the combination that triggers this binding.
	// Formats: "?", "Ctrl+K", "<C-k>", "Ctrl+Shift+P"
	Keys string `toml:"keys" yaml:"keys" json:"keys"`

	// Action is the command to execute.
	// Examples: "hint.toggle", "palette.open", "app.quit"
	Action string `toml:"action" yaml:"action" json:"action"`

	// Description provides documentation for the binding.
	Description string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`

	// Category groups bindings for display purposes.
	Category string `toml:"category,omitempty" yaml:"category,omitempty" json:"category,omitempty"`
}

// NewBinding creates a new binding with the given keys and action.
func NewBinding(keys, action string) Binding {
	return Binding{
		Keys:   keys,
		Action: action,
	}
}

// WithDescription sets the description for this binding.
func (b Binding) WithDescription(desc string) Binding {
	b.Description = desc
	return b
}

// WithCategory sets the category for this binding.
func (b Binding) WithCategory(category string) Binding {
	b.Category = category
	return b
}

// Combo parses Keys into canonical key names in written order.
func (b Binding) Combo() ([]string, error) {
	return key.ParseCombo(b.Keys)
}

// Canonical returns the order-independent form of the binding's keys,
// or "" if they do not parse.
func (b Binding) Canonical() string {
	names, err := b.Combo()
	if err != nil {
		return ""
	}
	return hotkey.Canonical(names)
}

// Label returns the display form of the binding's keys, e.g. "CONTROL + K".
func (b Binding) Label() string {
	names, err := b.Combo()
	if err != nil {
		return b.Keys
	}
	return key.FormatCombo(names)
}

// BindingCategory represents a category of bindings for display.
type BindingCategory struct {
	Name     string
	Bindings []Binding
}

// GroupByCategory groups bindings by their category.
func GroupByCategory(bindings []Binding) []BindingCategory {
	categoryMap := make(map[string][]Binding)
	order := make([]string, 0)

	for _, b := range bindings {
		cat := b.Category
		if cat == "" {
			cat = "Other"
		}
		if _, exists := categoryMap[cat]; !exists {
			order = append(order, cat)
		}
		categoryMap[cat] = append(categoryMap[cat], b)
	}

	result := make([]BindingCategory, 0, len(order))
	for _, name := range order {
		result = append(result, BindingCategory{
			Name:     name,
			Bindings: categoryMap[name],
		})
	}
	return result
}
