package hotkey

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/input/key"
)

// Listener receives a snapshot of the held keys after each change.
type Listener func(keys KeySet)

// Tracker maintains the set of keys currently held down.
type Tracker struct {
	// dispatchMu orders mutation and notification so listeners observe
	// changes in the order events were delivered.
	dispatchMu sync.Mutex

	mu        sync.Mutex
	keys      KeySet
	ignore    IgnoreFunc
	listeners listeners[Listener]
	closed    bool

	logger *zap.Logger
}

// NewTracker creates a tracker with an empty key set.
func NewTracker(opts ...Option) *Tracker {
	o := buildOptions(opts)
	return &Tracker{
		keys:   NewKeySet(),
		ignore: o.ignore,
		logger: o.logger,
	}
}

// Handle routes ev to KeyDown or KeyUp.
func (t *Tracker) Handle(ev Event) {
	switch ev.Type {
	case KeyDown:
		t.KeyDown(ev)
	case KeyUp:
		t.KeyUp(ev)
	}
}

// KeyDown inserts the event's key unless the event targets a text-entry
// control, in which case it is dropped without any state change.
func (t *Tracker) KeyDown(ev Event) {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if t.ignore != nil && t.ignore(ev) {
		t.mu.Unlock()
		t.logger.Debug("key-down ignored", zap.String("key", ev.Key), zap.String("target", ev.Target))
		return
	}
	name := key.Normalize(ev.Key)
	if !t.keys.Add(name) {
		t.mu.Unlock()
		return
	}
	snapshot := t.keys.Clone()
	fns := t.listeners.snapshot()
	t.mu.Unlock()

	notifyKeys(fns, snapshot)
}

// KeyUp removes the event's key regardless of its target, so focus moving
// mid-press cannot leave a key stuck. Releasing a key that was never
// recorded is a no-op.
func (t *Tracker) KeyUp(ev Event) {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	name := key.Normalize(ev.Key)
	if !t.keys.Remove(name) {
		t.mu.Unlock()
		return
	}
	snapshot := t.keys.Clone()
	fns := t.listeners.snapshot()
	t.mu.Unlock()

	notifyKeys(fns, snapshot)
}

// Subscribe registers fn to run after every key set change.
func (t *Tracker) Subscribe(fn Listener) *Subscription {
	sub := newSubscription(func(id string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.listeners.remove(id)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || fn == nil {
		return sub
	}
	t.listeners.add(sub.id, fn)
	return sub
}

// Keys returns a snapshot of the held keys.
func (t *Tracker) Keys() KeySet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keys.Clone()
}

// Canonical returns the canonical form of the held keys.
func (t *Tracker) Canonical() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keys.Canonical()
}

// Close drops all listeners. Events after Close are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.listeners.clear()
}

func notifyKeys(fns []Listener, keys KeySet) {
	for _, fn := range fns {
		fn(keys)
	}
}
