package hotkey

import (
	"strings"
	"time"
)

// EventType distinguishes key presses from releases.
type EventType uint8

const (
	// KeyDown is a key press.
	KeyDown EventType = iota
	// KeyUp is a key release.
	KeyUp
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case KeyDown:
		return "keydown"
	case KeyUp:
		return "keyup"
	default:
		return "unknown"
	}
}

// ParseEventType parses "keydown" or "keyup" (case-insensitive).
func ParseEventType(s string) (EventType, bool) {
	switch strings.ToLower(s) {
	case "keydown", "down":
		return KeyDown, true
	case "keyup", "up":
		return KeyUp, true
	default:
		return KeyDown, false
	}
}

// Target kinds of the controls that commonly accept text entry.
const (
	TargetNone     = ""
	TargetInput    = "input"
	TargetTextArea = "textarea"
	TargetSelect   = "select"
)

// Event is a single keyboard event delivered by a Source.
type Event struct {
	// Type is KeyDown or KeyUp.
	Type EventType

	// Key is the raw key name (KeyboardEvent.key). It is lowercased
	// before it enters a key set.
	Key string

	// Target names the kind of control the event originated in, or
	// TargetNone when no control had focus.
	Target string

	// Time is when the event occurred.
	Time time.Time
}

// NewKeyDown creates a key-down event with the current timestamp.
func NewKeyDown(key, target string) Event {
	return Event{Type: KeyDown, Key: key, Target: target, Time: time.Now()}
}

// NewKeyUp creates a key-up event with the current timestamp.
func NewKeyUp(key, target string) Event {
	return Event{Type: KeyUp, Key: key, Target: target, Time: time.Now()}
}

// IgnoreFunc reports whether a key-down should be ignored because it was
// aimed at a control that consumes typing.
type IgnoreFunc func(ev Event) bool

// TextEntryTargets returns an IgnoreFunc matching the given target kinds
// (case-insensitive).
func TextEntryTargets(kinds ...string) IgnoreFunc {
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return func(ev Event) bool {
		if ev.Target == TargetNone {
			return false
		}
		_, ok := set[strings.ToLower(ev.Target)]
		return ok
	}
}

// DefaultTextEntryTargets lists the target kinds ignored by default.
var DefaultTextEntryTargets = []string{TargetInput, TargetTextArea, TargetSelect}

// DefaultIgnore ignores key-downs aimed at inputs, text areas and selects.
func DefaultIgnore() IgnoreFunc {
	return TextEntryTargets(DefaultTextEntryTargets...)
}

// NeverIgnore processes every key-down.
func NeverIgnore(Event) bool { return false }
