package hotkey

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ActiveListener receives the active indicator whenever it is set or
// cleared. An empty string means no hotkey is active.
type ActiveListener func(active string)

// Matcher compares key sets against registered definitions and keeps the
// transient active indicator.
type Matcher struct {
	mu       sync.Mutex
	defs     []compiled
	active   string
	timer    *time.Timer
	gen      uint64
	duration time.Duration
	watchers listeners[ActiveListener]
	closed   bool

	logger *zap.Logger
}

// NewMatcher creates a matcher for defs. The definitions are copied.
func NewMatcher(defs []Definition, opts ...Option) *Matcher {
	o := buildOptions(opts)
	return &Matcher{
		defs:     compile(defs),
		duration: o.indicatorDuration,
		logger:   o.logger,
	}
}

// Evaluate matches keys against the definitions in registration order.
// The first definition whose canonical form equals that of a non-empty
// key set wins: its callback runs, and the indicator is set and its clear
// timer restarted. Returns whether a definition matched. A miss leaves
// the indicator untouched.
func (m *Matcher) Evaluate(keys KeySet) bool {
	if keys.Len() == 0 {
		return false
	}
	canonical := keys.Canonical()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	var (
		match Definition
		found bool
	)
	for _, c := range m.defs {
		if c.canonical == canonical {
			match, found = c.def, true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return false
	}

	m.logger.Debug("hotkey matched",
		zap.String("combo", canonical),
		zap.String("description", match.Description))

	m.invoke(canonical, match)
	m.activate(canonical)
	return true
}

// invoke runs the callback, recovering a panic so one faulty action does
// not stop key processing.
func (m *Matcher) invoke(canonical string, def Definition) {
	if def.Callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("hotkey callback panicked",
				zap.String("combo", canonical),
				zap.Any("panic", r))
		}
	}()
	def.Callback()
}

// activate sets the indicator and restarts its clear timer.
func (m *Matcher) activate(canonical string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.active = canonical
	m.timer = time.AfterFunc(m.duration, func() {
		m.expire(gen)
	})
	fns := m.watchers.snapshot()
	m.mu.Unlock()

	notifyActive(fns, canonical)
}

// expire clears the indicator unless a newer match replaced it.
func (m *Matcher) expire(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.active = ""
	m.timer = nil
	fns := m.watchers.snapshot()
	m.mu.Unlock()

	notifyActive(fns, "")
}

// Active returns the canonical form of the most recent match while its
// display window is open, or "".
func (m *Matcher) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// OnActiveChange registers fn to run when the indicator is set or cleared.
// Clears are delivered from a timer goroutine.
func (m *Matcher) OnActiveChange(fn ActiveListener) *Subscription {
	sub := newSubscription(func(id string) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.watchers.remove(id)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || fn == nil {
		return sub
	}
	m.watchers.add(sub.id, fn)
	return sub
}

// SetDefinitions replaces the registered definitions. The active
// indicator is left to expire on its own.
func (m *Matcher) SetDefinitions(defs []Definition) {
	c := compile(defs)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = c
}

// Definitions returns a copy of the registered definitions in
// registration order.
func (m *Matcher) Definitions() []Definition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Definition, len(m.defs))
	for i, c := range m.defs {
		out[i] = c.def.clone()
	}
	return out
}

// IndicatorDuration returns how long a match stays active.
func (m *Matcher) IndicatorDuration() time.Duration {
	return m.duration
}

// Close stops the pending clear timer and drops all watchers. A clear
// that was already in flight finds the matcher closed and does nothing.
func (m *Matcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.active = ""
	m.watchers.clear()
}

func notifyActive(fns []ActiveListener, active string) {
	for _, fn := range fns {
		fn(active)
	}
}
