package backend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/hotkey"
)

func newSimTerminal(t *testing.T) *Terminal {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(40, 10)
	return term
}

func startRun(t *testing.T, term *Terminal) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx) }()
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestTerminalPublishesKeys(t *testing.T) {
	term := newSimTerminal(t)
	defer term.Shutdown()

	var mu sync.Mutex
	var got []hotkey.Event
	received := make(chan struct{}, 16)
	release := term.Subscribe(func(e hotkey.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		received <- struct{}{}
	})
	defer release()

	cancel, done := startRun(t, term)

	if err := term.PostKey(tcell.KeyCtrlK, 0, tcell.ModCtrl); err != nil {
		t.Fatalf("PostKey failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d events, want 4", i)
		}
	}

	cancel()
	waitDone(t, done)

	mu.Lock()
	defer mu.Unlock()
	wantKeys := []string{"control", "k", "k", "control"}
	for i, e := range got {
		if e.Key != wantKeys[i] {
			t.Errorf("event %d key = %q, want %q", i, e.Key, wantKeys[i])
		}
	}
}

func TestTerminalPost(t *testing.T) {
	term := newSimTerminal(t)
	defer term.Shutdown()

	cancel, done := startRun(t, term)
	defer func() {
		cancel()
		waitDone(t, done)
	}()

	ran := make(chan struct{})
	if err := term.Post(func() {
		DrawText(term, 0, 0, -1, "hi", tcell.StyleDefault)
		close(ran)
	}); err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted func did not run")
	}
}

func TestTerminalShutdownStopsRun(t *testing.T) {
	term := newSimTerminal(t)
	cancel, done := startRun(t, term)
	defer cancel()

	term.Shutdown()
	waitDone(t, done)
}

func TestTerminalSize(t *testing.T) {
	term := newSimTerminal(t)
	defer term.Shutdown()

	w, h := term.Size()
	if w != 40 || h != 10 {
		t.Errorf("size = (%d, %d), want (40, 10)", w, h)
	}
}
