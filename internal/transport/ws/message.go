package ws

import (
	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/keymap"
)

// Frame types.
const (
	TypeKeyDown  = "keydown"
	TypeKeyUp    = "keyup"
	TypeAction   = "action"
	TypeActive   = "active"
	TypeBindings = "bindings"
	TypeError    = "error"
)

// ClientMessage is a frame sent by the client.
type ClientMessage struct {
	Type   string `json:"type"`
	Key    string `json:"key"`
	Target string `json:"target,omitempty"`
}

// Event converts a keydown or keyup frame to a hotkey event.
func (m ClientMessage) Event() (hotkey.Event, bool) {
	t, ok := hotkey.ParseEventType(m.Type)
	if !ok || m.Key == "" {
		return hotkey.Event{}, false
	}
	if t == hotkey.KeyDown {
		return hotkey.NewKeyDown(m.Key, m.Target), true
	}
	return hotkey.NewKeyUp(m.Key, m.Target), true
}

// ServerMessage is the union of every frame the server sends, for
// clients decoding them.
type ServerMessage struct {
	Type        string        `json:"type"`
	Action      string        `json:"action,omitempty"`
	Description string        `json:"description,omitempty"`
	Active      string        `json:"active,omitempty"`
	Labels      []string      `json:"labels,omitempty"`
	Bindings    []BindingInfo `json:"bindings,omitempty"`
	Message     string        `json:"message,omitempty"`
}

type actionFrame struct {
	Type        string `json:"type"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

type activeFrame struct {
	Type   string   `json:"type"`
	Active string   `json:"active"`
	Labels []string `json:"labels"`
}

type bindingsFrame struct {
	Type     string        `json:"type"`
	Bindings []BindingInfo `json:"bindings"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// BindingInfo describes one binding for display by the client.
type BindingInfo struct {
	Keys        []string `json:"keys"`
	Label       string   `json:"label"`
	Action      string   `json:"action"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// bindingInfos lists the keymap bindings. Bindings whose keys do not
// parse are skipped; Resolve has rejected them already.
func bindingInfos(km *keymap.Keymap) []BindingInfo {
	infos := make([]BindingInfo, 0, len(km.Bindings))
	for _, b := range km.Bindings {
		names, err := b.Combo()
		if err != nil {
			continue
		}
		infos = append(infos, BindingInfo{
			Keys:        names,
			Label:       key.FormatCombo(names),
			Action:      b.Action,
			Description: b.Description,
			Category:    b.Category,
		})
	}
	return infos
}

func newActiveFrame(active string) activeFrame {
	return activeFrame{
		Type:   TypeActive,
		Active: active,
		Labels: key.Labels(hotkey.SplitCanonical(active)),
	}
}
