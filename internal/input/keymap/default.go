package keymap

// Built-in action names.
const (
	ActionQuit          = "app.quit"
	ActionHintToggle    = "hint.toggle"
	ActionHintHide      = "hint.hide"
	ActionStatusClear   = "status.clear"
	ActionLogMessage    = "log.message"
	ActionPaletteOpen   = "palette.open"
	ActionCodeRun       = "code.run"
	ActionSidebarToggle = "sidebar.toggle"
	ActionChatToggle    = "chat.toggle"
	ActionBoardToggle   = "board.toggle"
)

// DefaultKeymap returns the bindings shipped with keychord.
//
// "?" is deliberately absent: the hint panel listens for it on raw
// key-downs, and binding it here would toggle twice.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name:   "default",
		Source: "default",
		Bindings: []Binding{
			{Keys: "F1", Action: ActionHintToggle, Description: "Toggle shortcut hints", Category: "Help"},
			{Keys: "Escape", Action: ActionHintHide, Description: "Hide shortcut hints", Category: "Help"},

			{Keys: "Ctrl+K", Action: ActionPaletteOpen, Description: "Open command palette", Category: "General"},
			{Keys: "Ctrl+Enter", Action: ActionCodeRun, Description: "Run code", Category: "General"},
			{Keys: "Ctrl+L", Action: ActionStatusClear, Description: "Clear status line", Category: "General"},
			{Keys: "Ctrl+Q", Action: ActionQuit, Description: "Quit", Category: "General"},

			{Keys: "Ctrl+B", Action: ActionSidebarToggle, Description: "Toggle sidebar", Category: "View"},
			{Keys: "Alt+C", Action: ActionChatToggle, Description: "Toggle chat", Category: "View"},
			{Keys: "Alt+D", Action: ActionBoardToggle, Description: "Toggle whiteboard", Category: "View"},
		},
	}
}
