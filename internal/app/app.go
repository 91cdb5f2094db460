// Package app wires configuration, hotkeys, the terminal and the hint
// panel into the keychord terminal demo.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
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

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means defaults and
	// the environment only.
	ConfigPath string

	// Config is used as-is instead of loading ConfigPath.
	Config *config.Config

	// Screen replaces the controlling terminal.
	Screen tcell.Screen

	// Watch reloads the config, keymap and script files when they change.
	Watch bool

	Logger *zap.Logger
}

// Application is the terminal demo: a tcell screen whose key presses
// drive a hotkey matcher, with the shortcut hint panel and a status line.
type Application struct {
	opts   Options
	logger *zap.Logger

	mu     sync.RWMutex
	cfg    *config.Config
	keymap *keymap.Keymap
	script *lua.Script
	cancel context.CancelFunc
	views  map[string]bool

	actions  *keymap.Actions
	hotkeys  *hotkey.Hotkeys
	terminal *backend.Terminal
	panel    *hint.Panel
	status   *statusline.StatusLine
	styles   hint.Styles
	watcher  *watcher.Watcher

	releases []func()

	running       atomic.Bool
	closed        atomic.Bool
	redrawPending atomic.Bool
	closeOnce     sync.Once
}

// New creates and initializes the application. The screen is not
// touched until Run.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		logger: opts.Logger,
		styles: hint.DefaultStyles(),
		views:  make(map[string]bool),
	}
	if app.logger == nil {
		app.logger = zap.NewNop()
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Run takes over the screen and processes key presses until ctx is done,
// the quit action fires, or the screen is shut down.
func (app *Application) Run(ctx context.Context) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.terminal.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer app.terminal.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()

	app.terminal.OnResize(func(_, _ int) { app.draw() })
	if app.Config().Hint.Enabled {
		app.panel.Start()
	}
	app.draw()

	w, h := app.terminal.Size()
	app.logger.Info("terminal started", zap.Int("width", w), zap.Int("height", h))
	err := app.terminal.Run(ctx)
	app.logger.Info("terminal stopped")
	return err
}

// Quit stops Run. It is the app.quit action.
func (app *Application) Quit() {
	app.mu.RLock()
	cancel := app.cancel
	app.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Close releases every component. It is safe to call more than once.
func (app *Application) Close() {
	app.closeOnce.Do(func() {
		app.closed.Store(true)
		app.Quit()

		if app.watcher != nil {
			if err := app.watcher.Close(); err != nil {
				app.logger.Warn("closing watcher", zap.Error(err))
			}
		}
		for i := len(app.releases) - 1; i >= 0; i-- {
			app.releases[i]()
		}
		app.releases = nil
		if app.hotkeys != nil {
			app.hotkeys.Close()
		}
		if app.panel != nil {
			app.panel.Close()
		}

		app.mu.Lock()
		script := app.script
		app.script = nil
		app.mu.Unlock()
		if script != nil {
			script.Close()
		}
	})
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Keymap returns the active keymap.
func (app *Application) Keymap() *keymap.Keymap {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.keymap
}

// Hotkeys returns the hotkey matcher.
func (app *Application) Hotkeys() *hotkey.Hotkeys {
	return app.hotkeys
}

// Panel returns the shortcut hint panel.
func (app *Application) Panel() *hint.Panel {
	return app.panel
}

// StatusLine returns the status line.
func (app *Application) StatusLine() *statusline.StatusLine {
	return app.status
}

// Terminal returns the terminal.
func (app *Application) Terminal() *backend.Terminal {
	return app.terminal
}

// Actions returns the action registry.
func (app *Application) Actions() *keymap.Actions {
	return app.actions
}

// ViewVisible reports the state of a demo view toggled by an action such
// as sidebar.toggle.
func (app *Application) ViewVisible(action string) bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.views[action]
}
