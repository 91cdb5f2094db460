package hotkey

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is a listener registration. Release removes it; calling
// Release more than once is safe.
type Subscription struct {
	id      string
	once    sync.Once
	release func(id string)
}

func newSubscription(release func(id string)) *Subscription {
	return &Subscription{
		id:      uuid.New().String(),
		release: release,
	}
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Release removes the registration.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release(s.id)
		}
	})
}

// listeners is an ordered registry of callbacks keyed by subscription ID.
// It is not safe for concurrent use; owners guard it with their own lock.
type listeners[F any] struct {
	ids []string
	fns map[string]F
}

func (l *listeners[F]) add(id string, fn F) {
	if l.fns == nil {
		l.fns = make(map[string]F)
	}
	l.ids = append(l.ids, id)
	l.fns[id] = fn
}

func (l *listeners[F]) remove(id string) {
	if _, ok := l.fns[id]; !ok {
		return
	}
	delete(l.fns, id)
	for i, existing := range l.ids {
		if existing == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			break
		}
	}
}

// snapshot returns the callbacks in registration order.
func (l *listeners[F]) snapshot() []F {
	out := make([]F, 0, len(l.ids))
	for _, id := range l.ids {
		out = append(out, l.fns[id])
	}
	return out
}

func (l *listeners[F]) clear() {
	l.ids = nil
	l.fns = nil
}

func (l *listeners[F]) len() int {
	return len(l.ids)
}
