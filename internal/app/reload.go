package app

import (
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/config/watcher"
	"github.com/dshills/keychord/internal/renderer/hint"
	"github.com/dshills/keychord/internal/renderer/statusline"
)

// handleFileChange reloads after a watched file changes.
func (app *Application) handleFileChange(ev watcher.Event) {
	app.logger.Info("file changed", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
	if err := app.Reload(); err != nil {
		app.setStatus("reload failed: "+err.Error(), statusline.MessageError)
		return
	}
	app.setStatus("configuration reloaded", statusline.MessageInfo)
}

// Reload rereads the configuration, keymap files and script, then swaps
// the hotkey definitions and the panel's shortcuts. On error the running
// definitions are kept. Indicator and ignore settings apply at startup
// only.
func (app *Application) Reload() error {
	if app.closed.Load() {
		return ErrClosed
	}

	cfg := app.opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(app.opts.ConfigPath)
		if err != nil {
			app.logger.Warn("reload failed", zap.Error(err))
			return &ComponentError{Component: "config", Action: "reload", Err: err}
		}
	}

	km, script, defs, err := app.buildDefinitions(cfg)
	if err != nil {
		app.logger.Warn("reload failed", zap.Error(err))
		return err
	}

	app.mu.Lock()
	old := app.script
	app.cfg = cfg
	app.keymap = km
	app.script = script
	app.mu.Unlock()

	app.hotkeys.SetDefinitions(defs)
	app.panel.SetShortcuts(hint.ShortcutsFrom(defs))
	if old != nil {
		old.Close()
	}

	app.logger.Info("hotkeys reloaded", zap.Int("definitions", len(defs)))
	app.requestRedraw()
	return nil
}
