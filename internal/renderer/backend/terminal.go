package backend

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/input/hotkey"
)

// Terminal draws to a tcell screen and publishes its key presses as
// hotkey events. It implements hotkey.Source and Canvas.
type Terminal struct {
	screen        tcell.Screen
	keys          *hotkey.Broadcaster
	resizeHandler func(width, height int)
	logger        *zap.Logger
	mu            sync.Mutex
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) TerminalOption {
	return func(t *Terminal) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTerminal creates a terminal on the controlling tty.
func NewTerminal(opts ...TerminalOption) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen, opts...), nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation
// screen in tests.
func NewTerminalWithScreen(screen tcell.Screen, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		screen: screen,
		keys:   hotkey.NewBroadcaster(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init prepares the screen. It must be called before drawing.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.HideCursor()
	return nil
}

// Shutdown restores the terminal. Run returns once the screen is gone.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// Size returns the screen dimensions.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// SetContent implements Canvas.
func (t *Terminal) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, mainc, combc, style)
}

// OnResize registers a callback run on the event loop after a resize.
func (t *Terminal) OnResize(callback func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resizeHandler = callback
}

// Clear blanks the screen.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

// Show flushes pending changes to the display.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// Sync redraws the whole display.
func (t *Terminal) Sync() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Sync()
}

// Subscribe implements hotkey.Source.
func (t *Terminal) Subscribe(handler func(hotkey.Event)) func() {
	return t.keys.Subscribe(handler)
}

// Post runs fn on the event loop. Use it to redraw from timer
// goroutines.
func (t *Terminal) Post(fn func()) error {
	return t.screen.PostEvent(tcell.NewEventInterrupt(fn))
}

// PostKey queues a synthetic key press.
func (t *Terminal) PostKey(k tcell.Key, r rune, mod tcell.ModMask) error {
	return t.screen.PostEvent(tcell.NewEventKey(k, r, mod))
}

// Run processes screen events until ctx is done or the screen is shut
// down. Key presses are translated and published to subscribers on the
// calling goroutine.
func (t *Terminal) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // wake PollEvent
		case <-stop:
		}
	}()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		t.dispatch(ev)
	}
}

func (t *Terminal) dispatch(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		events := Translate(e)
		if len(events) == 0 {
			t.logger.Debug("untranslated key", zap.String("key", e.Name()))
			return
		}
		for _, kev := range events {
			t.keys.Publish(kev)
		}

	case *tcell.EventResize:
		w, h := e.Size()
		t.Sync()
		t.mu.Lock()
		handler := t.resizeHandler
		t.mu.Unlock()
		if handler != nil {
			handler(w, h)
		}

	case *tcell.EventInterrupt:
		if fn, ok := e.Data().(func()); ok && fn != nil {
			fn()
		}
	}
}
