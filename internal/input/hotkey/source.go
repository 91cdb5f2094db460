package hotkey

import "sync"

// Source delivers key events, like a window delivering keydown and keyup.
type Source interface {
	// Subscribe registers handler and returns a function that removes the
	// registration.
	Subscribe(handler func(Event)) (release func())
}

// Broadcaster is a Source that fans published events out to every
// subscribed handler in subscription order.
type Broadcaster struct {
	mu       sync.RWMutex
	handlers listeners[func(Event)]
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe implements Source.
func (b *Broadcaster) Subscribe(handler func(Event)) func() {
	sub := newSubscription(func(id string) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers.remove(id)
	})
	if handler == nil {
		return sub.Release
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers.add(sub.id, handler)
	return sub.Release
}

// Publish delivers ev to all handlers synchronously.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	fns := b.handlers.snapshot()
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len returns the number of subscribed handlers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handlers.len()
}
