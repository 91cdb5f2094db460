// Package config provides the configuration system for keychord.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← KEYCHORD_LOG_LEVEL, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← keychord.toml or keychord.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Each layer is read into a map by the loader sub-package, the maps are
// deep-merged, and the result is decoded into a typed Config and
// validated. A config file may pull in others with an "@include" key.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable loading, map merging
//   - watcher: fsnotify-based change detection for live reload
//
// # Basic Usage
//
//	cfg, err := config.Load("keychord.toml")
//	if err != nil {
//	    return err
//	}
//	km, err := cfg.BuildKeymap()
//
// # Example File
//
//	[hotkeys]
//	indicator_duration = "500ms"
//	ignore_targets = ["input", "textarea", "select"]
//
//	[hint]
//	show_delay = "2.5s"
//	hide_after = "7s"
//	toggle_key = "?"
//
//	[[keymap.bindings]]
//	keys = "Ctrl+K"
//	action = "palette.open"
//	description = "Open command palette"
package config
