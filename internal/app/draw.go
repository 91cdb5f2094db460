package app

import (
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/renderer/backend"
	"github.com/dshills/keychord/internal/renderer/hint"
)

var (
	titleStyle = tcell.StyleDefault.Foreground(tcell.ColorViolet).Bold(true)
	textStyle  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	onStyle    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	offStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// requestRedraw schedules a redraw on the event loop. Requests made while
// one is pending are coalesced.
func (app *Application) requestRedraw() {
	if !app.running.Load() {
		return
	}
	if !app.redrawPending.CompareAndSwap(false, true) {
		return
	}
	if err := app.terminal.Post(app.redraw); err != nil {
		app.redrawPending.Store(false)
		app.logger.Debug("redraw dropped", zap.Error(err))
	}
}

func (app *Application) redraw() {
	app.redrawPending.Store(false)
	app.draw()
}

// draw paints the whole screen. It runs on the event loop.
func (app *Application) draw() {
	t := app.terminal
	w, h := t.Size()
	t.Clear()

	app.drawBody(t, w)

	reserve := app.status.Height()
	if app.panel.Visible() {
		rows := app.panel.Rows(app.hotkeys.Active())
		footer := app.panel.Footer()
		if box := hint.Layout(w, h, reserve, rows, footer); !box.Empty() {
			hint.Draw(t, box, rows, footer, app.styles)
		}
	}
	app.status.Render(t, h-reserve, w)
	t.Show()
}

// drawBody writes the title, usage and demo view states at the top left.
func (app *Application) drawBody(c backend.Canvas, width int) {
	limit := max(width-2, 0)
	backend.DrawText(c, 1, 1, limit, "keychord", titleStyle)
	backend.DrawText(c, 1, 2, limit, "Hold a key combination to fire its hotkey.", textStyle)
	backend.DrawText(c, 1, 3, limit, "Press "+app.panel.ToggleKey()+" to toggle the shortcut list.", textStyle)

	actions := make([]string, 0, len(viewNames))
	for action := range viewNames {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	app.mu.RLock()
	defer app.mu.RUnlock()
	x := 1
	for _, action := range actions {
		style := offStyle
		if app.views[action] {
			style = onStyle
		}
		label := "[" + strings.ToUpper(viewNames[action]) + "]"
		x += backend.DrawText(c, x, 5, max(width-x, 0), label, style) + 1
	}
}
