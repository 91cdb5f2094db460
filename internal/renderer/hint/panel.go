package hint

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/key"
)

// Panel defaults.
const (
	DefaultShowDelay = 2500 * time.Millisecond
	DefaultHideAfter = 7 * time.Second
	DefaultToggleKey = "?"

	Title = "Keyboard Shortcuts"
)

// Shortcut is one listed hotkey. Keys keep their registration order.
type Shortcut struct {
	Keys        []string
	Description string
}

// ShortcutsFrom lists the definitions as shortcuts, in order.
func ShortcutsFrom(defs []hotkey.Definition) []Shortcut {
	out := make([]Shortcut, 0, len(defs))
	for _, d := range defs {
		keys := make([]string, len(d.Keys))
		copy(keys, d.Keys)
		out = append(out, Shortcut{Keys: keys, Description: d.Description})
	}
	return out
}

// Row is a shortcut prepared for display.
type Row struct {
	Description string
	// Labels are the key labels in registration order.
	Labels []string
	// Active is set when the shortcut is the active hotkey.
	Active bool
}

// Keys joins the labels the way they are drawn, e.g. "CONTROL + K".
func (r Row) Keys() string {
	return joinLabels(r.Labels)
}

// Option configures a Panel.
type Option func(*Panel)

// WithShowDelay sets how long after Start the panel first appears.
func WithShowDelay(d time.Duration) Option {
	return func(p *Panel) {
		if d >= 0 {
			p.showDelay = d
		}
	}
}

// WithHideAfter sets how long the first automatic showing lasts.
func WithHideAfter(d time.Duration) Option {
	return func(p *Panel) {
		if d > 0 {
			p.hideAfter = d
		}
	}
}

// WithToggleKey sets the key that flips visibility. It is compared with
// the raw key name exactly.
func WithToggleKey(k string) Option {
	return func(p *Panel) {
		if k != "" {
			p.toggleKey = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Panel) {
		if l != nil {
			p.logger = l
		}
	}
}

// watcher is a visibility listener; watchers run in registration order.
type watcher struct {
	id uint64
	fn func(bool)
}

// Panel is the hint panel state. It is safe for concurrent use.
type Panel struct {
	mu sync.Mutex

	shortcuts []Shortcut

	visible        bool
	shownInitially bool
	started        bool
	closed         bool

	showTimer *time.Timer
	hideTimer *time.Timer

	showDelay time.Duration
	hideAfter time.Duration
	toggleKey string

	nextID   uint64
	watchers []watcher

	logger *zap.Logger
}

// New creates a hidden panel listing shortcuts.
func New(shortcuts []Shortcut, opts ...Option) *Panel {
	p := &Panel{
		shortcuts: cloneShortcuts(shortcuts),
		showDelay: DefaultShowDelay,
		hideAfter: DefaultHideAfter,
		toggleKey: DefaultToggleKey,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start schedules the first automatic showing. Later calls do nothing.
func (p *Panel) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.closed {
		return
	}
	p.started = true
	p.showTimer = time.AfterFunc(p.showDelay, p.autoShow)
}

// autoShow makes the panel visible, enables the toggle key, and
// schedules the automatic hide.
func (p *Panel) autoShow() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.shownInitially = true
	p.hideTimer = time.AfterFunc(p.hideAfter, p.autoHide)
	changed := p.setVisibleLocked(true)
	p.mu.Unlock()

	p.logger.Debug("shortcut hints shown")
	p.notify(changed, true)
}

func (p *Panel) autoHide() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	changed := p.setVisibleLocked(false)
	p.mu.Unlock()

	p.notify(changed, false)
}

// HandleKey flips visibility when ev is a key-down of the toggle key,
// once the panel has shown itself at least once. Targets are not
// filtered.
func (p *Panel) HandleKey(ev hotkey.Event) {
	if ev.Type != hotkey.KeyDown {
		return
	}

	p.mu.Lock()
	if p.closed || ev.Key != p.toggleKey || !p.shownInitially {
		p.mu.Unlock()
		return
	}
	visible := !p.visible
	changed := p.setVisibleLocked(visible)
	p.mu.Unlock()

	p.notify(changed, visible)
}

// Attach listens to raw key events from src. The returned function stops
// listening.
func (p *Panel) Attach(src hotkey.Source) func() {
	return src.Subscribe(p.HandleKey)
}

// Toggle flips visibility regardless of whether the panel has shown
// itself yet.
func (p *Panel) Toggle() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	visible := !p.visible
	changed := p.setVisibleLocked(visible)
	p.mu.Unlock()

	p.notify(changed, visible)
}

// Show makes the panel visible.
func (p *Panel) Show() {
	p.set(true)
}

// Hide closes the panel.
func (p *Panel) Hide() {
	p.set(false)
}

func (p *Panel) set(visible bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	changed := p.setVisibleLocked(visible)
	p.mu.Unlock()

	p.notify(changed, visible)
}

func (p *Panel) setVisibleLocked(visible bool) bool {
	if p.visible == visible {
		return false
	}
	p.visible = visible
	return true
}

// Visible reports whether the panel is showing.
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// ShownInitially reports whether the first automatic showing happened.
func (p *Panel) ShownInitially() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shownInitially
}

// ToggleKey returns the key that flips visibility.
func (p *Panel) ToggleKey() string {
	return p.toggleKey
}

// SetShortcuts replaces the listed shortcuts.
func (p *Panel) SetShortcuts(shortcuts []Shortcut) {
	p.mu.Lock()
	p.shortcuts = cloneShortcuts(shortcuts)
	p.mu.Unlock()
}

// Shortcuts returns a copy of the listed shortcuts.
func (p *Panel) Shortcuts() []Shortcut {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneShortcuts(p.shortcuts)
}

// Rows prepares the shortcuts for display, marking the one whose
// canonical combination equals active.
func (p *Panel) Rows(active string) []Row {
	p.mu.Lock()
	shortcuts := p.shortcuts
	p.mu.Unlock()

	rows := make([]Row, 0, len(shortcuts))
	for _, s := range shortcuts {
		rows = append(rows, Row{
			Description: s.Description,
			Labels:      key.Labels(s.Keys),
			Active:      active != "" && hotkey.Canonical(s.Keys) == active,
		})
	}
	return rows
}

// Footer returns the line shown beneath the rows.
func (p *Panel) Footer() string {
	return fmt.Sprintf("Press %s to toggle shortcuts", p.toggleKey)
}

// OnChange registers fn to run with the new visibility whenever it
// changes. The returned function unregisters it.
func (p *Panel) OnChange(fn func(visible bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return func() {}
	}
	p.nextID++
	id := p.nextID
	p.watchers = append(p.watchers, watcher{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, w := range p.watchers {
				if w.id == id {
					p.watchers = append(p.watchers[:i:i], p.watchers[i+1:]...)
					return
				}
			}
		})
	}
}

func (p *Panel) notify(changed, visible bool) {
	if !changed {
		return
	}

	p.mu.Lock()
	watchers := make([]func(bool), 0, len(p.watchers))
	for _, w := range p.watchers {
		watchers = append(watchers, w.fn)
	}
	p.mu.Unlock()

	for _, fn := range watchers {
		fn(visible)
	}
}

// Close cancels pending timers and drops change listeners. The panel
// ignores all input afterwards.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.showTimer != nil {
		p.showTimer.Stop()
	}
	if p.hideTimer != nil {
		p.hideTimer.Stop()
	}
	p.watchers = nil
}

func cloneShortcuts(in []Shortcut) []Shortcut {
	out := make([]Shortcut, len(in))
	for i, s := range in {
		keys := make([]string, len(s.Keys))
		copy(keys, s.Keys)
		out[i] = Shortcut{Keys: keys, Description: s.Description}
	}
	return out
}
