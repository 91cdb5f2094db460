package hotkey

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned when attaching a source to a closed Hotkeys.
var ErrClosed = errors.New("hotkeys closed")

// Hotkeys ties a Tracker to a Matcher: every key set change is matched
// against the definitions. It owns its source subscriptions and the
// indicator timer, and Close releases all of them.
type Hotkeys struct {
	tracker *Tracker
	matcher *Matcher
	link    *Subscription

	mu       sync.Mutex
	releases []func()
	closed   bool

	logger *zap.Logger
}

// New creates a Hotkeys for defs.
func New(defs []Definition, opts ...Option) *Hotkeys {
	o := buildOptions(opts)
	h := &Hotkeys{
		tracker: NewTracker(opts...),
		matcher: NewMatcher(defs, opts...),
		logger:  o.logger,
	}
	h.link = h.tracker.Subscribe(func(keys KeySet) {
		h.matcher.Evaluate(keys)
	})
	return h
}

// Attach subscribes to src. The subscription is released by Close.
func (h *Hotkeys) Attach(src Source) error {
	if src == nil {
		return errors.New("nil source")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	release := src.Subscribe(h.Handle)
	h.releases = append(h.releases, release)
	return nil
}

// Handle feeds a single event through the tracker and matcher.
func (h *Hotkeys) Handle(ev Event) {
	h.tracker.Handle(ev)
}

// Active returns the currently active combination, or "".
func (h *Hotkeys) Active() string {
	return h.matcher.Active()
}

// OnActiveChange registers fn for indicator changes.
func (h *Hotkeys) OnActiveChange(fn ActiveListener) *Subscription {
	return h.matcher.OnActiveChange(fn)
}

// OnKeysChange registers fn to run after every key set change, once the
// change has been matched.
func (h *Hotkeys) OnKeysChange(fn Listener) *Subscription {
	return h.tracker.Subscribe(fn)
}

// SetDefinitions replaces the registered definitions.
func (h *Hotkeys) SetDefinitions(defs []Definition) {
	h.matcher.SetDefinitions(defs)
	h.logger.Debug("hotkey definitions replaced", zap.Int("count", len(defs)))
}

// Definitions returns a copy of the registered definitions.
func (h *Hotkeys) Definitions() []Definition {
	return h.matcher.Definitions()
}

// IndicatorDuration returns how long a match stays active.
func (h *Hotkeys) IndicatorDuration() time.Duration {
	return h.matcher.IndicatorDuration()
}

// Keys returns a snapshot of the held keys.
func (h *Hotkeys) Keys() KeySet {
	return h.tracker.Keys()
}

// Close releases every source subscription, stops the indicator timer
// and drops all listeners. It is safe to call more than once.
func (h *Hotkeys) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	releases := h.releases
	h.releases = nil
	h.mu.Unlock()

	for _, release := range releases {
		if release != nil {
			release()
		}
	}
	h.link.Release()
	h.tracker.Close()
	h.matcher.Close()
}
