package app

import (
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/renderer/statusline"
)

// viewNames are the panels of the collaborative editor that the demo
// toggles, keyed by action.
var viewNames = map[string]string{
	keymap.ActionSidebarToggle: "sidebar",
	keymap.ActionChatToggle:    "chat",
	keymap.ActionBoardToggle:   "whiteboard",
}

// newActions registers the built-in actions.
func (app *Application) newActions() *keymap.Actions {
	a := keymap.NewActions()

	a.MustRegister(keymap.ActionQuit, app.Quit)
	a.MustRegister(keymap.ActionHintToggle, func() { app.panel.Toggle() })
	a.MustRegister(keymap.ActionHintHide, func() { app.panel.Hide() })
	a.MustRegister(keymap.ActionStatusClear, app.clearStatus)
	a.MustRegister(keymap.ActionLogMessage, app.logKeys)

	a.MustRegister(keymap.ActionPaletteOpen, app.report("command palette opened"))
	a.MustRegister(keymap.ActionCodeRun, app.report("code run requested"))
	for action := range viewNames {
		a.MustRegister(action, app.toggleView(action))
	}
	return a
}

// ActionNames lists the actions a keymap may bind in the terminal demo.
func ActionNames() []string {
	return (&Application{}).newActions().Names()
}

// setStatus shows msg in the status line.
func (app *Application) setStatus(msg string, t statusline.MessageType) {
	app.status.SetMessage(msg, t)
	app.requestRedraw()
}

func (app *Application) clearStatus() {
	app.status.ClearMessage()
	app.requestRedraw()
}

func (app *Application) logKeys() {
	app.logger.Info("hotkey pressed", zap.Strings("keys", app.hotkeys.Keys().Names()))
}

func (app *Application) report(msg string) keymap.Action {
	return func() {
		app.logger.Debug("action", zap.String("message", msg))
		app.setStatus(msg, statusline.MessageInfo)
	}
}

func (app *Application) toggleView(action string) keymap.Action {
	name := viewNames[action]
	return func() {
		app.mu.Lock()
		visible := !app.views[action]
		app.views[action] = visible
		app.mu.Unlock()

		state := "hidden"
		if visible {
			state = "shown"
		}
		app.setStatus(name+" "+state, statusline.MessageInfo)
	}
}
