// Package lua runs hotkey scripts written in Lua.
//
// Scripts run in a sandboxed gopher-lua state: only the base, table,
// string and math libraries are opened, the loaders (dofile, load,
// require...) are removed, and print goes to the logger. Every run and
// every callback is bounded by an execution timeout.
//
// A script binds hotkeys through the keychord module:
//
//	keychord.bind("Ctrl+Shift+P", "Command palette", function()
//	    keychord.log("palette")
//	end)
//	keychord.bind({"alt", "d"}, function() end)
//
// The host turns the bindings into hotkey definitions:
//
//	script, err := lua.LoadFile("hotkeys.lua", lua.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer script.Close()
//	hk.SetDefinitions(append(defs, script.Definitions()...))
package lua
