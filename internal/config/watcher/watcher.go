// Package watcher provides file watching for configuration live reload.
//
// The watcher monitors configuration files for changes and triggers
// reload callbacks when modifications are detected. It watches each
// file's directory rather than the file itself, so editors that save by
// writing a temporary file and renaming it over the original are seen.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherClosed is returned when watching after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last coalesced change occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu sync.RWMutex

	fsw *fsnotify.Watcher

	// Watched files, and how many of them live in each watched directory
	files map[string]struct{}
	dirs  map[string]int

	handlers []Handler

	debounce  time.Duration
	pendingMu sync.Mutex
	pending   map[string]*pendingEvent

	logger *zap.Logger

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// pendingEvent is a change waiting out the debounce period.
type pendingEvent struct {
	op    Operation
	time  time.Time
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes. Zero
// reports every change immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		debounce: DefaultDebounce,
		pending:  make(map[string]*pendingEvent),
		logger:   zap.NewNop(),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet; its
// directory must.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[absPath]; ok {
		return nil
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = struct{}{}
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[absPath]; !ok {
		return nil
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Close stops watching. Pending debounced events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()

	w.pendingMu.Lock()
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	return w.fsw.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// handleFSEvent filters directory events down to watched files.
func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	path := filepath.Clean(fsEvent.Name)

	w.mu.RLock()
	_, watched := w.files[path]
	w.mu.RUnlock()
	if !watched {
		return
	}

	op, ok := convertOp(fsEvent.Op)
	if !ok {
		return
	}

	event := Event{Path: path, Op: op, Time: time.Now()}
	if w.debounce > 0 {
		w.queueEvent(event)
	} else {
		w.emitEvent(event)
	}
}

// convertOp maps an fsnotify operation; chmod-only events are dropped.
func convertOp(fsOp fsnotify.Op) (Operation, bool) {
	switch {
	case fsOp.Has(fsnotify.Remove):
		return OpRemove, true
	case fsOp.Has(fsnotify.Rename):
		return OpRename, true
	case fsOp.Has(fsnotify.Create):
		return OpCreate, true
	case fsOp.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}

// queueEvent queues an event for debounced delivery, restarting the
// path's quiet period. It coalesces events:
// - create + write => create
// - write + write => write
// - any + remove => remove
// - remove + create => write (the file was replaced)
func (w *Watcher) queueEvent(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	existing, exists := w.pending[event.Path]
	if !exists {
		p := &pendingEvent{op: event.Op, time: event.Time}
		path := event.Path
		p.timer = time.AfterFunc(w.debounce, func() { w.flush(path) })
		w.pending[path] = p
		return
	}

	switch {
	case event.Op == OpRemove || event.Op == OpRename:
		existing.op = event.Op
	case event.Op == OpCreate && (existing.op == OpRemove || existing.op == OpRename):
		existing.op = OpWrite
	case event.Op == OpCreate:
		existing.op = OpCreate
	case existing.op == OpRemove || existing.op == OpRename:
		existing.op = OpWrite
	}
	existing.time = event.Time
	existing.timer.Reset(w.debounce)
}

// flush emits the pending event for path once it has been quiet.
func (w *Watcher) flush(path string) {
	w.pendingMu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	if !ok {
		return
	}

	w.mu.RLock()
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return
	}

	w.emitEvent(Event{Path: path, Op: p.op, Time: p.time})
}

// emitEvent calls all handlers with the event.
func (w *Watcher) emitEvent(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	w.logger.Debug("config file changed",
		zap.String("path", event.Path),
		zap.Stringer("op", event.Op),
	)
	for _, handler := range handlers {
		w.safeCallHandler(handler, event)
	}
}

// safeCallHandler calls a handler with panic recovery.
func (w *Watcher) safeCallHandler(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("config watcher handler panicked",
				zap.String("path", event.Path),
				zap.Any("panic", r),
			)
		}
	}()
	handler(event)
}
