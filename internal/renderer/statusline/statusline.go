// Package statusline renders the bottom status line: the held keys, the
// active hotkey, and transient messages.
package statusline

import (
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/renderer/backend"
)

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case MessageInfo:
		return "info"
	case MessageWarning:
		return "warning"
	case MessageError:
		return "error"
	default:
		return "none"
	}
}

// Label is the name shown at the left edge.
const Label = "KEYCHORD"

// StatusLine is the bottom row of the terminal demo. It is safe for
// concurrent use.
type StatusLine struct {
	mu sync.Mutex

	keys   []string // held keys, canonical order
	active string   // canonical active hotkey

	message     string
	messageType MessageType

	labelStyle tcell.Style
	barStyle   tcell.Style
}

// New creates an empty status line.
func New() *StatusLine {
	return &StatusLine{
		labelStyle: tcell.StyleDefault.Bold(true).Background(tcell.ColorBlue).Foreground(tcell.ColorWhite),
		barStyle:   tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite),
	}
}

// SetKeys updates the held keys.
func (s *StatusLine) SetKeys(keys hotkey.KeySet) {
	names := keys.Names()
	s.mu.Lock()
	s.keys = names
	s.mu.Unlock()
}

// SetActive updates the active hotkey. An empty string clears it.
func (s *StatusLine) SetActive(canonical string) {
	s.mu.Lock()
	s.active = canonical
	s.mu.Unlock()
}

// SetMessage displays a status message in place of the status bar.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.mu.Lock()
	s.message = msg
	s.messageType = msgType
	s.mu.Unlock()
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.SetMessage("", MessageNone)
}

// Message returns the current message and its type.
func (s *StatusLine) Message() (string, MessageType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message, s.messageType
}

// Height returns the number of rows the status line uses.
func (s *StatusLine) Height() int {
	return 1
}

// Render draws the status line on row, width cells wide.
func (s *StatusLine) Render(c backend.Canvas, row, width int) {
	s.mu.Lock()
	keys := s.keys
	active := s.active
	msg, msgType := s.message, s.messageType
	s.mu.Unlock()

	if msg != "" {
		s.renderMessage(c, row, width, msg, msgType)
		return
	}
	s.renderStatusBar(c, row, width, keys, active)
}

// renderStatusBar draws the label, the held keys and, on the right, the
// active hotkey.
func (s *StatusLine) renderStatusBar(c backend.Canvas, row, width int, keys []string, active string) {
	backend.Fill(c, backend.Rect{Left: 0, Top: row, Right: width, Bottom: row + 1}, ' ', s.barStyle)

	col := backend.DrawText(c, 0, row, width, " "+Label+" ", s.labelStyle)
	col++

	right := ""
	if active != "" {
		right = "hotkey " + key.FormatCombo(hotkey.SplitCanonical(active)) + " "
	}
	rightStart := width - utf8.RuneCountInString(right)

	held := "keys: -"
	if len(keys) > 0 {
		held = "keys: " + key.FormatCombo(keys)
	}
	if limit := rightStart - col - 1; limit > 0 {
		backend.DrawText(c, col, row, limit, held, s.barStyle)
	}

	if right != "" && rightStart > col {
		backend.DrawText(c, rightStart, row, -1, right, s.barStyle.Bold(true))
	}
}

// renderMessage draws a status message.
func (s *StatusLine) renderMessage(c backend.Canvas, row, width int, msg string, msgType MessageType) {
	var msgStyle tcell.Style
	switch msgType {
	case MessageError:
		msgStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	case MessageWarning:
		msgStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		msgStyle = tcell.StyleDefault
	}

	backend.Fill(c, backend.Rect{Left: 0, Top: row, Right: width, Bottom: row + 1}, ' ', msgStyle)
	backend.DrawText(c, 0, row, width, msg, msgStyle)
}
