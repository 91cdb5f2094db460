package lua

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/key"
)

// ModuleName is the global table scripts use.
const ModuleName = "keychord"

// bound is one keychord.bind call.
type bound struct {
	keys        []string
	description string
	fn          *lua.LFunction
}

// Script is a loaded hotkey script. Its bindings become hotkey
// definitions whose callbacks run the bound Lua functions.
type Script struct {
	name   string
	state  *State
	logger *zap.Logger

	mu       sync.Mutex
	bindings []bound
}

// LoadFile runs the script at path and collects its bindings.
func LoadFile(path string, opts ...StateOption) (*Script, error) {
	s := newScript(path, opts)
	if err := s.state.DoFile(path); err != nil {
		s.Close()
		return nil, &ScriptError{Script: path, Err: err}
	}
	return s, nil
}

// LoadString runs code under name and collects its bindings.
func LoadString(name, code string, opts ...StateOption) (*Script, error) {
	s := newScript(name, opts)
	if err := s.state.DoString(code); err != nil {
		s.Close()
		return nil, &ScriptError{Script: name, Err: err}
	}
	return s, nil
}

func newScript(name string, opts []StateOption) *Script {
	state := NewState(opts...)
	s := &Script{
		name:   name,
		state:  state,
		logger: state.logger.With(zap.String("script", name)),
	}
	state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"bind": s.bind,
		"log":  s.log,
	})
	return s
}

// Name returns the script path or name.
func (s *Script) Name() string {
	return s.name
}

// bind(keys, [description], fn)
// keys is a combo string such as "Ctrl+K" or a table of key names.
func (s *Script) bind(L *lua.LState) int {
	keys, err := checkKeys(L, 1)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}

	var description string
	fnArg := 2
	if L.Get(2).Type() == lua.LTString {
		description = L.CheckString(2)
		fnArg = 3
	}
	fn := L.CheckFunction(fnArg)

	s.mu.Lock()
	s.bindings = append(s.bindings, bound{keys: keys, description: description, fn: fn})
	s.mu.Unlock()
	return 0
}

// checkKeys reads a combo string or a list of key names.
func checkKeys(L *lua.LState, n int) ([]string, error) {
	switch v := L.Get(n).(type) {
	case lua.LString:
		return key.ParseCombo(string(v))
	case *lua.LTable:
		var names []string
		var bad error
		v.ForEach(func(_, val lua.LValue) {
			str, ok := val.(lua.LString)
			if !ok && bad == nil {
				bad = fmt.Errorf("key names must be strings, got %s", val.Type())
				return
			}
			names = append(names, string(str))
		})
		if bad != nil {
			return nil, bad
		}
		return key.ParseKeys(names)
	default:
		return nil, fmt.Errorf("keys must be a string or table, got %s", v.Type())
	}
}

// log(...)
func (s *Script) log(L *lua.LState) int {
	s.logger.Info(joinArgs(L, 1))
	return 0
}

// Definitions returns one definition per bind call, in call order.
func (s *Script) Definitions() []hotkey.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	defs := make([]hotkey.Definition, 0, len(s.bindings))
	for _, b := range s.bindings {
		keys := make([]string, len(b.keys))
		copy(keys, b.keys)
		fn := b.fn
		defs = append(defs, hotkey.Definition{
			Keys:        keys,
			Description: b.description,
			Callback:    func() { s.invoke(keys, fn) },
		})
	}
	return defs
}

// invoke runs a bound function. Errors are logged, not returned: the
// callback runs on the key event path.
func (s *Script) invoke(keys []string, fn *lua.LFunction) {
	if err := s.state.CallFunction(fn); err != nil {
		s.logger.Error("hotkey callback failed",
			zap.String("keys", key.FormatCombo(keys)),
			zap.Error(err),
		)
	}
}

// Close releases the Lua state. Definitions taken earlier stop running
// their functions.
func (s *Script) Close() {
	s.state.Close()
}
