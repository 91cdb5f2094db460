package keymap

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/keychord/internal/input/hotkey"
)

// Resolution errors.
var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrDuplicateAction = errors.New("action already registered")
)

// Action is the function run when a bound combination is matched.
type Action func()

// Resolver maps an action name to the function that performs it.
type Resolver interface {
	Lookup(name string) (Action, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (Action, bool)

// Lookup calls f(name).
func (f ResolverFunc) Lookup(name string) (Action, bool) {
	return f(name)
}

// Actions is a registry of named actions. It is safe for concurrent use.
type Actions struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewActions creates an empty action registry.
func NewActions() *Actions {
	return &Actions{
		actions: make(map[string]Action),
	}
}

// Register adds a named action.
func (a *Actions) Register(name string, fn Action) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownAction)
	}
	if fn == nil {
		return fmt.Errorf("action %q: nil function", name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.actions[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, name)
	}
	a.actions[name] = fn
	return nil
}

// MustRegister is like Register but panics on error.
func (a *Actions) MustRegister(name string, fn Action) {
	if err := a.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the action registered under name.
func (a *Actions) Lookup(name string) (Action, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	fn, ok := a.actions[name]
	return fn, ok
}

// Names returns the registered action names, sorted.
func (a *Actions) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.actions))
	for name := range a.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveError reports the binding that could not be turned into a
// hotkey definition.
type ResolveError struct {
	Index   int
	Binding Binding
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("binding %d (%s -> %s): %v", e.Index, e.Binding.Keys, e.Binding.Action, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Resolve turns the keymap into hotkey definitions in binding order.
// Keys are parsed into canonical names and each action is looked up in r.
// A bad key spec or an unknown action fails the whole keymap.
func Resolve(km *Keymap, r Resolver) ([]hotkey.Definition, error) {
	if km == nil {
		return nil, nil
	}
	defs := make([]hotkey.Definition, 0, len(km.Bindings))
	for i, b := range km.Bindings {
		names, err := b.Combo()
		if err != nil {
			return nil, &ResolveError{Index: i, Binding: b, Err: err}
		}
		fn, ok := r.Lookup(b.Action)
		if !ok || fn == nil {
			return nil, &ResolveError{Index: i, Binding: b, Err: fmt.Errorf("%w: %q", ErrUnknownAction, b.Action)}
		}
		desc := b.Description
		if desc == "" {
			desc = b.Action
		}
		defs = append(defs, hotkey.Definition{
			Keys:        names,
			Callback:    fn,
			Description: desc,
		})
	}
	return defs, nil
}

// Duplicate describes definitions sharing one combination. Only the
// first, at index First, can match; the rest are shadowed.
type Duplicate struct {
	Canonical string
	First     int
	Shadowed  []int
}

// Duplicates reports definitions whose combinations collide with an
// earlier definition.
func Duplicates(defs []hotkey.Definition) []Duplicate {
	index := make(map[string]int)
	var dups []Duplicate
	for i, d := range defs {
		c := d.Canonical()
		if c == "" {
			continue
		}
		first, seen := index[c]
		if !seen {
			index[c] = i
			continue
		}
		found := false
		for j := range dups {
			if dups[j].Canonical == c {
				dups[j].Shadowed = append(dups[j].Shadowed, i)
				found = true
				break
			}
		}
		if !found {
			dups = append(dups, Duplicate{Canonical: c, First: first, Shadowed: []int{i}})
		}
	}
	return dups
}
