package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/keychord/internal/config/loader"
	"github.com/dshills/keychord/internal/input/keymap"
)

// noEnv keeps the process environment out of a load.
var noEnv = WithEnvLoader(nil)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Hotkeys.IndicatorDuration.Std() != 500*time.Millisecond {
		t.Errorf("IndicatorDuration = %v, want 500ms", cfg.Hotkeys.IndicatorDuration)
	}
	if cfg.Hint.ShowDelay.Std() != 2500*time.Millisecond {
		t.Errorf("ShowDelay = %v, want 2.5s", cfg.Hint.ShowDelay)
	}
	if cfg.Hint.HideAfter.Std() != 7*time.Second {
		t.Errorf("HideAfter = %v, want 7s", cfg.Hint.HideAfter)
	}
	if cfg.Hint.ToggleKey != "?" {
		t.Errorf("ToggleKey = %q, want %q", cfg.Hint.ToggleKey, "?")
	}
	if strings.Join(cfg.Hotkeys.IgnoreTargets, ",") != "input,textarea,select" {
		t.Errorf("IgnoreTargets = %v", cfg.Hotkeys.IgnoreTargets)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("", noEnv)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if cfg.Hotkeys.IndicatorDuration != want.Hotkeys.IndicatorDuration {
		t.Errorf("IndicatorDuration = %v, want %v", cfg.Hotkeys.IndicatorDuration, want.Hotkeys.IndicatorDuration)
	}
	if cfg.Server.Addr != want.Server.Addr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, want.Server.Addr)
	}
	if !cfg.Keymap.Defaults {
		t.Error("Keymap.Defaults should default to true")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), noEnv)
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Load() error = %v, want ErrFileNotFound", err)
	}
}

func TestLoad_TOMLAndYAMLParity(t *testing.T) {
	tomlPath := writeConfig(t, "keychord.toml", `
[hotkeys]
indicator_duration = "750ms"
ignore_targets = ["input"]

[hint]
show_delay = "1s"
toggle_key = "F1"

[log]
level = "debug"
format = "json"

[keymap]
defaults = false

[[keymap.bindings]]
keys = "Ctrl+K"
action = "palette.open"
description = "Open command palette"
`)
	yamlPath := writeConfig(t, "keychord.yaml", `
hotkeys:
  indicator_duration: 750ms
  ignore_targets: [input]
hint:
  show_delay: 1s
  toggle_key: F1
log:
  level: debug
  format: json
keymap:
  defaults: false
  bindings:
    - keys: Ctrl+K
      action: palette.open
      description: Open command palette
`)

	for _, path := range []string{tomlPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg, err := Load(path, noEnv)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Path != path {
				t.Errorf("Path = %q, want %q", cfg.Path, path)
			}
			if cfg.Hotkeys.IndicatorDuration.Std() != 750*time.Millisecond {
				t.Errorf("IndicatorDuration = %v, want 750ms", cfg.Hotkeys.IndicatorDuration)
			}
			if len(cfg.Hotkeys.IgnoreTargets) != 1 || cfg.Hotkeys.IgnoreTargets[0] != "input" {
				t.Errorf("IgnoreTargets = %v, want [input]", cfg.Hotkeys.IgnoreTargets)
			}
			if cfg.Hint.ShowDelay.Std() != time.Second {
				t.Errorf("ShowDelay = %v, want 1s", cfg.Hint.ShowDelay)
			}
			if cfg.Hint.HideAfter.Std() != 7*time.Second {
				t.Errorf("HideAfter = %v, want default 7s", cfg.Hint.HideAfter)
			}
			if !cfg.Hint.Enabled {
				t.Error("Hint.Enabled should keep its default")
			}
			if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
				t.Errorf("Log = %+v", cfg.Log)
			}
			if cfg.Keymap.Defaults {
				t.Error("Keymap.Defaults = true, want false")
			}
			if len(cfg.Keymap.Bindings) != 1 || cfg.Keymap.Bindings[0].Action != "palette.open" {
				t.Errorf("Bindings = %+v", cfg.Keymap.Bindings)
			}
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "keychord.toml", `
[log]
level = "warn"

[server]
addr = ":9000"
`)
	t.Setenv("KEYCHORD_LOG_LEVEL", "debug")
	t.Setenv("KEYCHORD_HOTKEYS_IGNORE_TARGETS", "textarea")
	t.Setenv("KEYCHORD_HINT_HIDE_AFTER", "3000")
	t.Setenv("KEYCHORD_CONFIG", path)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env value %q", cfg.Log.Level, "debug")
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want file value", cfg.Server.Addr)
	}
	if len(cfg.Hotkeys.IgnoreTargets) != 1 || cfg.Hotkeys.IgnoreTargets[0] != "textarea" {
		t.Errorf("IgnoreTargets = %v, want [textarea]", cfg.Hotkeys.IgnoreTargets)
	}
	if cfg.Hint.HideAfter.Std() != 3*time.Second {
		t.Errorf("HideAfter = %v, want 3s from bare milliseconds", cfg.Hint.HideAfter)
	}
}

func TestLoad_CustomEnvLoader(t *testing.T) {
	env := loader.NewEnvLoaderWithMapping("APP_", map[string]string{})
	t.Setenv("APP_LOG_LEVEL", "error")

	cfg, err := Load("", WithEnvLoader(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "error")
	}
}

func TestLoad_UnknownSetting(t *testing.T) {
	path := writeConfig(t, "keychord.toml", `
[hotkeys]
indicator_duraton = "1s"
`)

	_, err := Load(path, noEnv)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Load() error = %v, want ErrValidationFailed", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %T does not contain *ValidationError", err)
	}
	if verr.Code != ErrCodeUnknownSetting {
		t.Errorf("Code = %v, want unknown_setting", verr.Code)
	}
	if !strings.HasSuffix(verr.Path, "indicator_duraton") {
		t.Errorf("Path = %q, want it to name indicator_duraton", verr.Path)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, "keychord.toml", `
[hint]
show_delay = "soon"
`)

	if _, err := Load(path, noEnv); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Load() error = %v, want ErrValidationFailed", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "keychord.toml", "[log\nlevel = 1\n")

	_, err := Load(path, noEnv)
	var perr *loader.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("Load() error = %v, want *loader.ParseError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
		code   ValidationErrorCode
	}{
		{"zero indicator", func(c *Config) { c.Hotkeys.IndicatorDuration = 0 }, "hotkeys.indicator_duration", ErrCodeOutOfRange},
		{"empty target", func(c *Config) { c.Hotkeys.IgnoreTargets = []string{""} }, "hotkeys.ignore_targets", ErrCodeRequiredMissing},
		{"negative show delay", func(c *Config) { c.Hint.ShowDelay = -1 }, "hint.show_delay", ErrCodeOutOfRange},
		{"zero hide after", func(c *Config) { c.Hint.HideAfter = 0 }, "hint.hide_after", ErrCodeOutOfRange},
		{"empty toggle key", func(c *Config) { c.Hint.ToggleKey = "" }, "hint.toggle_key", ErrCodeRequiredMissing},
		{"bad toggle key", func(c *Config) { c.Hint.ToggleKey = "Ctrl++x" }, "hint.toggle_key", ErrCodeInvalidEnum},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level", ErrCodeInvalidEnum},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format", ErrCodeInvalidEnum},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr", ErrCodeRequiredMissing},
		{"read before ping", func(c *Config) { c.Server.ReadTimeout = c.Server.PingInterval }, "server.read_timeout", ErrCodeOutOfRange},
		{"zero message size", func(c *Config) { c.Server.MaxMessageSize = 0 }, "server.max_message_size", ErrCodeOutOfRange},
		{"bad binding", func(c *Config) {
			c.Keymap.Bindings = []keymap.Binding{{Keys: "Ctrl+K"}}
		}, "keymap.bindings", ErrCodeTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Errorf("Path = %q, want %q", verr.Path, tt.path)
			}
			if verr.Code != tt.code {
				t.Errorf("Code = %v, want %v", verr.Code, tt.code)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		text    string
		want    time.Duration
		wantErr bool
	}{
		{"500ms", 500 * time.Millisecond, false},
		{"2.5s", 2500 * time.Millisecond, false},
		{"250", 250 * time.Millisecond, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.text))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.Std() != tt.want {
				t.Errorf("Duration = %v, want %v", d.Std(), tt.want)
			}
		})
	}

	text, _ := Duration(1500 * time.Millisecond).MarshalText()
	if string(text) != "1.5s" {
		t.Errorf("MarshalText() = %q, want %q", text, "1.5s")
	}
}

func TestBuildKeymap(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(`
bindings:
  - keys: Ctrl+K
    action: custom.palette
  - keys: Alt+X
    action: custom.extra
`), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "keychord.toml")
	if err := os.WriteFile(path, []byte(`
[keymap]
files = ["extra.yaml"]

[[keymap.bindings]]
keys = "Alt+X"
action = "inline.extra"
`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, noEnv)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	km, err := cfg.BuildKeymap()
	if err != nil {
		t.Fatalf("BuildKeymap() error = %v", err)
	}

	byCombo := make(map[string]string)
	for _, b := range km.Bindings {
		byCombo[b.Canonical()] = b.Action
	}
	if byCombo["control+k"] != "custom.palette" {
		t.Errorf("control+k -> %q, want file override", byCombo["control+k"])
	}
	if byCombo["alt+x"] != "inline.extra" {
		t.Errorf("alt+x -> %q, want inline override", byCombo["alt+x"])
	}
	if byCombo["f1"] != keymap.ActionHintToggle {
		t.Errorf("f1 -> %q, want default binding", byCombo["f1"])
	}
	if len(km.Bindings) != len(keymap.DefaultKeymap().Bindings)+1 {
		t.Errorf("len(Bindings) = %d, want defaults plus one", len(km.Bindings))
	}

	paths := cfg.WatchPaths()
	if len(paths) != 2 || paths[1] != filepath.Join(dir, "extra.yaml") {
		t.Errorf("WatchPaths() = %v", paths)
	}
}

func TestBuildKeymap_MissingFile(t *testing.T) {
	cfg := Default()
	cfg.Keymap.Files = []string{filepath.Join(t.TempDir(), "missing.toml")}

	if _, err := cfg.BuildKeymap(); err == nil {
		t.Error("BuildKeymap() should fail for a missing keymap file")
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	if got := cfg.Resolve("keys.toml"); got != "keys.toml" {
		t.Errorf("Resolve() without Path = %q", got)
	}

	cfg.Path = filepath.Join("/etc", "keychord", "keychord.toml")
	if got := cfg.Resolve("keys.toml"); got != filepath.Join("/etc", "keychord", "keys.toml") {
		t.Errorf("Resolve() = %q", got)
	}
	if got := cfg.Resolve("/abs/keys.toml"); got != "/abs/keys.toml" {
		t.Errorf("Resolve(abs) = %q", got)
	}
	cfg.Script.Path = "hotkeys.lua"
	if got := cfg.ScriptPath(); got != filepath.Join("/etc", "keychord", "hotkeys.lua") {
		t.Errorf("ScriptPath() = %q", got)
	}
}
