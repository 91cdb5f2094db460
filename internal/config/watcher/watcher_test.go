package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// recorder captures the last event and the number of events delivered.
type recorder struct {
	mu    sync.Mutex
	last  Event
	count atomic.Int32
}

func (r *recorder) handle(event Event) {
	r.mu.Lock()
	r.last = event
	r.mu.Unlock()
	r.count.Add(1)
}

func (r *recorder) lastEvent() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *recorder) wait(t *testing.T, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for r.count.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if r.count.Load() == 0 {
		t.Fatal("did not receive file change event")
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNew_WithOptions(t *testing.T) {
	w := newWatcher(t)
	if w.debounce != DefaultDebounce {
		t.Errorf("default debounce = %v, want %v", w.debounce, DefaultDebounce)
	}

	w = newWatcher(t, WithDebounce(50*time.Millisecond), WithLogger(nil))
	if w.debounce != 50*time.Millisecond {
		t.Errorf("debounce = %v, want 50ms", w.debounce)
	}
	if w.logger == nil {
		t.Error("WithLogger(nil) should keep the default logger")
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "keychord.toml")
	writeFile(t, tmpFile, "x = 1")

	w := newWatcher(t)

	if err := w.Watch(tmpFile); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Watch(tmpFile); err != nil {
		t.Fatalf("second Watch() error = %v", err)
	}
	if err := w.Watch(filepath.Join(tmpDir, "later.toml")); err != nil {
		t.Fatalf("Watch(nonexistent) error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("WatchedFiles() = %d files, want 2", got)
	}
	if got := w.dirs[tmpDir]; got != 2 {
		t.Errorf("dir refcount = %d, want 2", got)
	}

	if err := w.Unwatch(tmpFile); err != nil {
		t.Fatalf("Unwatch() error = %v", err)
	}
	if err := w.Unwatch(filepath.Join(tmpDir, "later.toml")); err != nil {
		t.Fatalf("Unwatch() error = %v", err)
	}
	if got := len(w.WatchedFiles()); got != 0 {
		t.Errorf("WatchedFiles() = %d files, want 0", got)
	}
	if _, ok := w.dirs[tmpDir]; ok {
		t.Error("directory should no longer be watched")
	}

	if err := w.Watch(filepath.Join(tmpDir, "missing", "x.toml")); err == nil {
		t.Error("Watch() in a missing directory should fail")
	}
}

func TestWatcher_Close(t *testing.T) {
	w := newWatcher(t)

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Watch("x.toml"); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch() after Close error = %v, want ErrWatcherClosed", err)
	}
}

func TestWatcher_DetectsFileModification(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.toml")
	writeFile(t, tmpFile, "initial")

	w := newWatcher(t, WithDebounce(0))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(tmpFile); err != nil {
		t.Fatal(err)
	}

	writeFile(t, tmpFile, "modified")
	rec.wait(t, time.Second)

	event := rec.lastEvent()
	if event.Op != OpWrite {
		t.Errorf("event.Op = %v, want OpWrite", event.Op)
	}
	if event.Path != tmpFile {
		t.Errorf("event.Path = %q, want %q", event.Path, tmpFile)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "watched.toml")
	writeFile(t, tmpFile, "initial")

	w := newWatcher(t, WithDebounce(0))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(tmpFile); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(tmpDir, "other.toml"), "x")
	time.Sleep(100 * time.Millisecond)

	if n := rec.count.Load(); n != 0 {
		t.Errorf("received %d events for an unwatched sibling", n)
	}
}

func TestWatcher_DetectsFileCreation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "new.toml")

	w := newWatcher(t, WithDebounce(30*time.Millisecond))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(tmpFile); err != nil {
		t.Fatal(err)
	}

	writeFile(t, tmpFile, "created")
	rec.wait(t, time.Second)

	if op := rec.lastEvent().Op; op != OpCreate {
		t.Errorf("event.Op = %v, want OpCreate", op)
	}
}

func TestWatcher_DetectsFileDeletion(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "delete.toml")
	writeFile(t, tmpFile, "initial")

	w := newWatcher(t, WithDebounce(0))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(tmpFile); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(tmpFile); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, time.Second)

	if op := rec.lastEvent().Op; op != OpRemove {
		t.Errorf("event.Op = %v, want OpRemove", op)
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "replace.toml")
	writeFile(t, tmpFile, "initial")

	w := newWatcher(t, WithDebounce(50*time.Millisecond))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(tmpFile); err != nil {
		t.Fatal(err)
	}

	tmp := filepath.Join(tmpDir, "replace.toml.tmp")
	writeFile(t, tmp, "replaced")
	if err := os.Rename(tmp, tmpFile); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, time.Second)
	time.Sleep(100 * time.Millisecond)

	if n := rec.count.Load(); n != 1 {
		t.Errorf("received %d events, want 1", n)
	}
	if op := rec.lastEvent().Op; op != OpCreate {
		t.Errorf("event.Op = %v, want OpCreate", op)
	}
}

func TestWatcher_Debounce(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "debounce.toml")
	writeFile(t, tmpFile, "initial")

	w := newWatcher(t, WithDebounce(100*time.Millisecond))
	var rec recorder
	w.OnChange(rec.handle)
	if err := w.Watch(tmpFile); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		writeFile(t, tmpFile, "modified")
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)

	if n := rec.count.Load(); n != 1 {
		t.Errorf("received %d events, want 1 (debounced)", n)
	}
}

func TestWatcher_QueueCoalescing(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
		want Operation
	}{
		{"create then write", []Operation{OpCreate, OpWrite}, OpCreate},
		{"write then write", []Operation{OpWrite, OpWrite}, OpWrite},
		{"write then remove", []Operation{OpWrite, OpRemove}, OpRemove},
		{"remove then create", []Operation{OpRemove, OpCreate}, OpWrite},
		{"rename then write", []Operation{OpRename, OpWrite}, OpWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWatcher(t, WithDebounce(time.Hour))
			for _, op := range tt.ops {
				w.queueEvent(Event{Path: "/x.toml", Op: op, Time: time.Now()})
			}

			w.pendingMu.Lock()
			got := w.pending["/x.toml"].op
			w.pendingMu.Unlock()
			if got != tt.want {
				t.Errorf("coalesced op = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatcher_HandlerPanic(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "panic.toml")
	writeFile(t, tmpFile, "initial")

	w := newWatcher(t, WithDebounce(0))
	var rec recorder
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(rec.handle)
	if err := w.Watch(tmpFile); err != nil {
		t.Fatal(err)
	}

	writeFile(t, tmpFile, "modified")
	rec.wait(t, time.Second)
}
