package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// removedGlobals load code from disk or strings and would escape the
// sandbox.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

// openSafeLibraries opens only safe Lua standard libraries: base, table,
// string and math. io, os, debug and package are never opened.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// installSandbox strips the loaders from the globals and routes print
// through logger.
func installSandbox(L *lua.LState, logger *zap.Logger) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		logger.Info(joinArgs(L, 1))
		return 0
	}))
}

// joinArgs converts the arguments from index start onwards to strings
// and joins them with tabs, like print.
func joinArgs(L *lua.LState, start int) string {
	top := L.GetTop()
	if top < start {
		return ""
	}
	parts := make([]string, 0, top-start+1)
	for i := start; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, "\t")
}
