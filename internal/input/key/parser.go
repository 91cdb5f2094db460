package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec        = errors.New("empty key specification")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key specification")
)

// ParseCombo parses a combination specification into canonical key names,
// keeping the written order for display.
//
// Supported formats:
//   - Single key: "?", "k", "Enter", "Space", "F5"
//   - Readable: "Ctrl+K", "Ctrl+Shift+P", "Alt++" (Alt and the plus key)
//   - Vim-style: "<C-k>", "<C-S-p>", "<Esc>", "<CR>"
//
// Modifier aliases resolve to browser key names, so "Ctrl+K" yields
// ["control", "k"].
func ParseCombo(spec string) ([]string, error) {
	if spec == Space {
		return []string{Space}, nil
	}
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return nil, ErrEmptySpec
	}

	if len(trimmed) > 1 && strings.HasPrefix(trimmed, "<") {
		return parseVimCombo(trimmed)
	}

	parts, err := splitCombo(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, spec)
	}

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			name = Space
		}
		names = append(names, FromName(name))
	}
	return dedupe(spec, names)
}

// ParseKeys normalizes an explicit list of key names, as written in a
// keymap list or a script table.
func ParseKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, ErrEmptySpec
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("%w: empty key name", ErrInvalidSpec)
		}
		names = append(names, FromName(k))
	}
	return dedupe(strings.Join(keys, "+"), names)
}

// MustParseCombo is like ParseCombo but panics on error.
func MustParseCombo(spec string) []string {
	names, err := ParseCombo(spec)
	if err != nil {
		panic(err)
	}
	return names
}

// splitCombo splits on '+'. A '+' with nothing before it is the plus key
// itself, which is only valid as the final part.
func splitCombo(spec string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(spec); i++ {
		c := spec[i]
		if c != '+' {
			cur.WriteByte(c)
			continue
		}
		if cur.Len() == 0 {
			if i == len(spec)-1 {
				return append(parts, Plus), nil
			}
			return nil, ErrInvalidSpec
		}
		parts = append(parts, cur.String())
		cur.Reset()
	}
	if cur.Len() == 0 {
		return nil, ErrInvalidSpec
	}
	return append(parts, cur.String()), nil
}

// parseVimCombo parses <C-S-p> style notation.
func parseVimCombo(spec string) ([]string, error) {
	if !strings.HasPrefix(spec, "<") || !strings.HasSuffix(spec, ">") {
		return nil, fmt.Errorf("%w: %q", ErrUnmatchedBracket, spec)
	}
	inner := spec[1 : len(spec)-1]
	if inner == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}

	keyName := ""
	if strings.HasSuffix(inner, "--") {
		keyName = "-"
		inner = strings.TrimSuffix(inner, "--")
	}

	parts := strings.Split(inner, "-")
	if keyName == "" {
		keyName = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	} else if inner == "" {
		parts = nil
	}
	if keyName == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}

	names := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		mod, ok := vimModifierMap[strings.ToLower(p)]
		if !ok {
			mod = ModifierFromName(p)
		}
		if mod == ModNone {
			return nil, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidSpec, p, spec)
		}
		names = append(names, mod.Name())
	}
	names = append(names, FromName(keyName))
	return dedupe(spec, names)
}

// dedupe rejects combinations naming the same key twice; a key set can
// never hold such a combination.
func dedupe(spec string, names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w: duplicate key %q in %q", ErrInvalidSpec, n, spec)
		}
		seen[n] = struct{}{}
	}
	return names, nil
}
