package app

import (
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/config/watcher"
	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/plugin/lua"
	"github.com/dshills/keychord/internal/renderer/backend"
	"github.com/dshills/keychord/internal/renderer/hint"
	"github.com/dshills/keychord/internal/renderer/statusline"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      app.opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"terminal", b.initTerminal},
		{"hotkeys", b.initHotkeys},
		{"hint", b.initHint},
		{"statusline", b.initStatusLine},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.app.logger.Error("initialization failed",
				zap.String("component", step.name),
				zap.Strings("initialized", b.initOrder),
				zap.Error(err),
			)
			b.cleanup()
			return err
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

// initConfig loads the configuration unless one was supplied.
func (b *bootstrapper) initConfig() error {
	cfg := b.opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(b.opts.ConfigPath)
		if err != nil {
			return &InitError{Component: "config", Err: err}
		}
	} else if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.app.cfg = cfg
	return nil
}

// initTerminal creates the terminal; the screen is initialized by Run.
func (b *bootstrapper) initTerminal() error {
	logger := b.app.logger.Named("terminal")
	if b.opts.Screen != nil {
		b.app.terminal = backend.NewTerminalWithScreen(b.opts.Screen, backend.WithLogger(logger))
		return nil
	}
	term, err := backend.NewTerminal(backend.WithLogger(logger))
	if err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	b.app.terminal = term
	return nil
}

// initHotkeys resolves the keymap and script into definitions and
// attaches the matcher to the terminal.
func (b *bootstrapper) initHotkeys() error {
	app := b.app
	app.actions = app.newActions()

	km, script, defs, err := app.buildDefinitions(app.cfg)
	if err != nil {
		return &InitError{Component: "hotkeys", Err: err}
	}
	app.keymap = km
	app.script = script

	app.hotkeys = hotkey.New(defs, hotkeyOptions(app.cfg, app.logger)...)
	if err := app.hotkeys.Attach(app.terminal); err != nil {
		return &InitError{Component: "hotkeys", Err: err}
	}
	return nil
}

// initHint creates the shortcut panel and listens for its toggle key.
func (b *bootstrapper) initHint() error {
	app := b.app
	cfg := app.cfg.Hint
	app.panel = hint.New(hint.ShortcutsFrom(app.hotkeys.Definitions()),
		hint.WithShowDelay(cfg.ShowDelay.Std()),
		hint.WithHideAfter(cfg.HideAfter.Std()),
		hint.WithToggleKey(cfg.ToggleKey),
		hint.WithLogger(app.logger.Named("hint")),
	)
	if cfg.Enabled {
		app.releases = append(app.releases, app.panel.Attach(app.terminal))
	}
	app.releases = append(app.releases, app.panel.OnChange(func(bool) {
		app.requestRedraw()
	}))
	return nil
}

// initStatusLine mirrors held keys and the active hotkey in the status line.
func (b *bootstrapper) initStatusLine() error {
	app := b.app
	app.status = statusline.New()

	keys := app.hotkeys.OnKeysChange(func(keys hotkey.KeySet) {
		app.status.SetKeys(keys)
		app.requestRedraw()
	})
	active := app.hotkeys.OnActiveChange(func(canonical string) {
		app.status.SetActive(canonical)
		app.requestRedraw()
	})
	app.releases = append(app.releases, keys.Release, active.Release)
	return nil
}

// initWatcher watches the config, keymap and script files when enabled.
func (b *bootstrapper) initWatcher() error {
	app := b.app
	if !b.opts.Watch {
		return nil
	}
	paths := app.cfg.WatchPaths()
	if len(paths) == 0 {
		return nil
	}

	w, err := watcher.New(watcher.WithLogger(app.logger.Named("watcher")))
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	for _, p := range paths {
		if err := w.Watch(p); err != nil {
			app.logger.Warn("cannot watch file", zap.String("path", p), zap.Error(err))
		}
	}
	w.OnChange(app.handleFileChange)
	app.watcher = w
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	b.app.Close()
}

// hotkeyOptions converts the hotkeys section of cfg.
func hotkeyOptions(cfg *config.Config, logger *zap.Logger) []hotkey.Option {
	return []hotkey.Option{
		hotkey.WithIndicatorDuration(cfg.Hotkeys.IndicatorDuration.Std()),
		hotkey.WithIgnore(hotkey.TextEntryTargets(cfg.Hotkeys.IgnoreTargets...)),
		hotkey.WithLogger(logger.Named("hotkey")),
	}
}

// buildDefinitions resolves cfg's keymap against the registered actions
// and appends the script's bindings. Shadowed combinations are logged.
func (app *Application) buildDefinitions(cfg *config.Config) (*keymap.Keymap, *lua.Script, []hotkey.Definition, error) {
	km, err := cfg.BuildKeymap()
	if err != nil {
		return nil, nil, nil, &ComponentError{Component: "keymap", Action: "build", Err: err}
	}
	defs, err := keymap.Resolve(km, app.actions)
	if err != nil {
		return nil, nil, nil, &ComponentError{Component: "keymap", Action: "resolve", Err: err}
	}

	var script *lua.Script
	if path := cfg.ScriptPath(); path != "" {
		script, err = lua.LoadFile(path, lua.WithLogger(app.logger.Named("lua")))
		if err != nil {
			return nil, nil, nil, &ComponentError{Component: "script", Action: "load", Err: err}
		}
		defs = append(defs, script.Definitions()...)
	}

	for _, d := range keymap.Duplicates(defs) {
		app.logger.Warn("duplicate hotkey combination",
			zap.String("combo", d.Canonical),
			zap.Int("first", d.First),
			zap.Ints("shadowed", d.Shadowed),
		)
	}
	return km, script, defs, nil
}
