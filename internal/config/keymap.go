package config

import (
	"fmt"

	"github.com/dshills/keychord/internal/input/keymap"
)

// BuildKeymap assembles the effective keymap: the built-in defaults when
// enabled, each keymap file in order, then the inline bindings. Later
// layers replace earlier bindings for the same combination.
func (c *Config) BuildKeymap() (*keymap.Keymap, error) {
	km := keymap.NewKeymap("keychord")
	if c.Keymap.Defaults {
		km = keymap.Merge(km, keymap.DefaultKeymap())
	}

	l := keymap.NewLoader()
	for _, f := range c.Keymap.Files {
		path := c.Resolve(f)
		file, err := l.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading keymap: %w", err)
		}
		if err := file.Validate(); err != nil {
			return nil, fmt.Errorf("keymap %s: %w", path, err)
		}
		km = keymap.Merge(km, file)
	}

	if len(c.Keymap.Bindings) > 0 {
		inline := &keymap.Keymap{Source: "config", Bindings: c.Keymap.Bindings}
		if c.Path != "" {
			inline.Source = c.Path
		}
		km = keymap.Merge(km, inline)
	}

	km.Name = "keychord"
	return km, nil
}

// ScriptPath returns the configured Lua script path, resolved against the
// config file, or "" when none is set.
func (c *Config) ScriptPath() string {
	return c.Resolve(c.Script.Path)
}

// WatchPaths lists the files whose changes should trigger a reload.
func (c *Config) WatchPaths() []string {
	var paths []string
	if c.Path != "" {
		paths = append(paths, c.Path)
	}
	for _, f := range c.Keymap.Files {
		paths = append(paths, c.Resolve(f))
	}
	if p := c.ScriptPath(); p != "" {
		paths = append(paths, p)
	}
	return paths
}
