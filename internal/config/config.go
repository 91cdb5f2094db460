package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keychord/internal/config/loader"
	"github.com/dshills/keychord/internal/input/keymap"
)

// maxIncludeDepth limits nested @include directives.
const maxIncludeDepth = 8

// Config is the typed keychord configuration.
type Config struct {
	Hotkeys HotkeysConfig `toml:"hotkeys" yaml:"hotkeys"`
	Hint    HintConfig    `toml:"hint" yaml:"hint"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Keymap  KeymapConfig  `toml:"keymap" yaml:"keymap"`
	Script  ScriptConfig  `toml:"script" yaml:"script"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-" yaml:"-"`
}

// HotkeysConfig configures the hotkey matcher.
type HotkeysConfig struct {
	// IndicatorDuration is how long a matched combination stays active.
	IndicatorDuration Duration `toml:"indicator_duration" yaml:"indicator_duration"`
	// IgnoreTargets lists target kinds whose key-downs are ignored.
	IgnoreTargets []string `toml:"ignore_targets" yaml:"ignore_targets"`
}

// HintConfig configures the shortcut hint panel.
type HintConfig struct {
	Enabled   bool     `toml:"enabled" yaml:"enabled"`
	ShowDelay Duration `toml:"show_delay" yaml:"show_delay"`
	HideAfter Duration `toml:"hide_after" yaml:"hide_after"`
	ToggleKey string   `toml:"toggle_key" yaml:"toggle_key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	// File receives log output; empty means stderr, except in the
	// terminal UI where logging is off unless a file is named.
	File string `toml:"file" yaml:"file"`
}

// ServerConfig configures the websocket bridge.
type ServerConfig struct {
	Addr           string   `toml:"addr" yaml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
	PingInterval   Duration `toml:"ping_interval" yaml:"ping_interval"`
	ReadTimeout    Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxMessageSize int64    `toml:"max_message_size" yaml:"max_message_size"`
}

// KeymapConfig selects the key bindings.
type KeymapConfig struct {
	// Defaults includes the built-in keymap beneath the others.
	Defaults bool `toml:"defaults" yaml:"defaults"`
	// Files are keymap files merged in order over the defaults.
	Files []string `toml:"files" yaml:"files"`
	// Bindings are merged last.
	Bindings []keymap.Binding `toml:"bindings" yaml:"bindings"`
}

// ScriptConfig locates the Lua hotkey script.
type ScriptConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Hotkeys: HotkeysConfig{
			IndicatorDuration: Duration(500 * time.Millisecond),
			IgnoreTargets:     []string{"input", "textarea", "select"},
		},
		Hint: HintConfig{
			Enabled:   true,
			ShowDelay: Duration(2500 * time.Millisecond),
			HideAfter: Duration(7 * time.Second),
			ToggleKey: "?",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{},
			PingInterval:   Duration(30 * time.Second),
			ReadTimeout:    Duration(60 * time.Second),
			WriteTimeout:   Duration(10 * time.Second),
			MaxMessageSize: 4096,
		},
		Keymap: KeymapConfig{
			Defaults: true,
			Files:    []string{},
			Bindings: []keymap.Binding{},
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	envPrefix string
	env       loader.Loader
}

// WithFileSystem reads configuration files from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithEnvLoader replaces the environment layer; nil disables it.
func WithEnvLoader(l loader.Loader) Option {
	return func(o *options) {
		o.env = l
		o.envPrefix = ""
	}
}

// Load builds the configuration from defaults, then the file at path
// (skipped when path is empty), then the environment. The result is
// validated.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.envPrefix != "" {
		o.env = loader.NewEnvLoader(o.envPrefix)
	}

	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := o.fs.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, err
		}
		fileMap, err := loader.LoadWithIncludes(o.fs, path, maxIncludeDepth)
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, fileMap)
	}

	if o.env != nil {
		envMap, err := o.env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, envMap)
	}

	cfg, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// listPaths hold string lists; a single string is accepted as a
// one-element list.
var listPaths = []string{
	"hotkeys.ignore_targets",
	"server.allowed_origins",
	"keymap.files",
}

// durationPaths hold durations; bare numbers are milliseconds.
var durationPaths = []string{
	"hotkeys.indicator_duration",
	"hint.show_delay",
	"hint.hide_after",
	"server.ping_interval",
	"server.read_timeout",
	"server.write_timeout",
}

// FromMap decodes a merged configuration map. Unknown settings and type
// mismatches are reported as ValidationErrors.
func FromMap(m map[string]any) (*Config, error) {
	m = loader.Clone(m)
	coerce(m)

	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	cfg := &Config{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, decodeError(err)
	}
	return cfg, nil
}

func coerce(m map[string]any) {
	for _, path := range listPaths {
		if s, ok := getPath(m, path).(string); ok {
			setPath(m, path, []any{s})
		}
	}
	for _, path := range durationPaths {
		switch v := getPath(m, path).(type) {
		case int:
			setPath(m, path, fmt.Sprintf("%dms", v))
		case int64:
			setPath(m, path, fmt.Sprintf("%dms", v))
		case float64:
			setPath(m, path, time.Duration(v*float64(time.Millisecond)).String())
		case time.Duration:
			setPath(m, path, v.String())
		}
	}
}

func decodeError(err error) error {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		errs := make([]error, 0, len(strict.Errors))
		for _, e := range strict.Errors {
			errs = append(errs, &ValidationError{
				Path:    strings.Join(e.Key(), "."),
				Message: "unknown setting",
				Code:    ErrCodeUnknownSetting,
			})
		}
		return errors.Join(errs...)
	}

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		return &ValidationError{
			Path:    strings.Join(derr.Key(), "."),
			Message: derr.Error(),
			Code:    ErrCodeTypeMismatch,
		}
	}
	return &ValidationError{Message: err.Error(), Code: ErrCodeTypeMismatch}
}

// toMap encodes cfg as a plain configuration map.
func toMap(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	m := make(map[string]any)
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return m, nil
}

// Resolve returns path relative to the config file's directory, unless
// it is absolute or no file was loaded.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.Path), path)
}

func getPath(m map[string]any, path string) any {
	v, _ := loader.GetByPath(m, path)
	return v
}

func setPath(m map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
