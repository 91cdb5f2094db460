package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// DefaultExecutionTimeout bounds every script run and callback.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; every entry point takes the
// state mutex.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	logger           *zap.Logger

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the execution timeout for Lua calls. Zero
// disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d >= 0 {
			s.executionTimeout = d
		}
	}
}

// WithLogger sets the logger that receives print output.
func WithLogger(l *zap.Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	openSafeLibraries(L)
	installSandbox(L, state.logger)

	state.L = L
	return state
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	return s.run(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua string.
func (s *State) DoString(code string) error {
	return s.run(func() error {
		return s.L.DoString(code)
	})
}

// CallFunction calls fn with no arguments and discards its results.
func (s *State) CallFunction(fn *lua.LFunction) error {
	return s.run(func() error {
		return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
}

// RegisterModule sets a global table holding funcs.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.SetFuncs(s.L.NewTable(), funcs))
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// run executes fn under the state mutex with the execution timeout and
// panic recovery.
func (s *State) run(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.executionTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.executionTimeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
		defer func() {
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	// Leave the stack as we found it.
	top := s.L.GetTop()
	defer s.L.SetTop(top)

	return fn()
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later calls return ErrStateClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
