package hotkey

import (
	"sort"
	"strings"
)

// Separator joins key names in a canonical combination.
const Separator = "+"

// KeySet is a set of normalized key names currently held down.
type KeySet map[string]struct{}

// NewKeySet creates a key set holding names.
func NewKeySet(names ...string) KeySet {
	s := make(KeySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts name and reports whether the set changed.
func (s KeySet) Add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}
	s[name] = struct{}{}
	return true
}

// Remove deletes name and reports whether the set changed.
func (s KeySet) Remove(name string) bool {
	if _, ok := s[name]; !ok {
		return false
	}
	delete(s, name)
	return true
}

// Has reports whether name is held.
func (s KeySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of held keys.
func (s KeySet) Len() int {
	return len(s)
}

// Names returns the held key names sorted lexicographically.
func (s KeySet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Canonical returns the sorted, "+"-joined form of the set.
func (s KeySet) Canonical() string {
	return strings.Join(s.Names(), Separator)
}

// Clone returns an independent copy of the set.
func (s KeySet) Clone() KeySet {
	c := make(KeySet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// Canonical returns the order-independent form of a key combination:
// the names sorted lexicographically and joined with "+". The input
// slice is not modified.
func Canonical(keys []string) string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	return strings.Join(sorted, Separator)
}

// SplitCanonical reverses Canonical. A doubled separator is the plus key
// itself, so "++control" yields ["+", "control"].
func SplitCanonical(canonical string) []string {
	if canonical == "" {
		return nil
	}
	parts := strings.Split(canonical, Separator)
	names := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		if parts[i] == "" && i+1 < len(parts) && parts[i+1] == "" {
			names = append(names, Separator)
			i++
			continue
		}
		names = append(names, parts[i])
	}
	return names
}
