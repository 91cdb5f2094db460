package lua

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	glua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/keychord/internal/input/hotkey"
)

func TestLoadStringBindings(t *testing.T) {
	script, err := LoadString("test", `
count = 0
keychord.bind("Ctrl+K", "Open palette", function() count = count + 1 end)
keychord.bind({"alt", "d"}, function() count = count + 10 end)
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer script.Close()

	defs := script.Definitions()
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
	if !reflect.DeepEqual(defs[0].Keys, []string{"control", "k"}) {
		t.Errorf("defs[0].Keys = %q", defs[0].Keys)
	}
	if defs[0].Description != "Open palette" {
		t.Errorf("defs[0].Description = %q", defs[0].Description)
	}
	if !reflect.DeepEqual(defs[1].Keys, []string{"alt", "d"}) || defs[1].Description != "" {
		t.Errorf("defs[1] = %+v", defs[1])
	}

	defs[0].Callback()
	defs[1].Callback()
	if v := script.state.GetGlobal("count"); v.(glua.LNumber) != 11 {
		t.Errorf("count = %v, want 11", v)
	}
}

func TestScriptDrivesHotkeys(t *testing.T) {
	script, err := LoadString("test", `
fired = 0
keychord.bind("Ctrl+Shift+P", "Palette", function() fired = fired + 1 end)
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer script.Close()

	h := hotkey.New(script.Definitions())
	defer h.Close()

	for _, k := range []string{"Shift", "Control", "P"} {
		h.Handle(hotkey.NewKeyDown(k, ""))
	}
	if v := script.state.GetGlobal("fired"); v.(glua.LNumber) != 1 {
		t.Errorf("fired = %v, want 1", v)
	}
	if h.Active() != "control+p+shift" {
		t.Errorf("Active = %q", h.Active())
	}
}

func TestBindErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"empty combo", `keychord.bind("", function() end)`, "empty key specification"},
		{"bad combo", `keychord.bind("Ctrl++K", function() end)`, "invalid key specification"},
		{"non-string key", `keychord.bind({"alt", 3}, function() end)`, "must be strings"},
		{"bad keys type", `keychord.bind(42, function() end)`, "string or table"},
		{"missing function", `keychord.bind("k", "desc")`, "function expected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := LoadString(tt.name, tt.code)
			if err == nil {
				script.Close()
				t.Fatal("expected error")
			}
			var se *ScriptError
			if !errors.As(err, &se) || se.Script != tt.name {
				t.Errorf("error = %v, want ScriptError for %q", err, tt.name)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestCallbackErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	script, err := LoadString("test", `
keychord.bind("x", function() error("boom") end)
keychord.log("loaded", 1)
`, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer script.Close()

	script.Definitions()[0].Callback()

	if n := logs.FilterMessage("loaded\t1").Len(); n != 1 {
		t.Errorf("keychord.log entries = %d, want 1", n)
	}
	failed := logs.FilterMessage("hotkey callback failed").All()
	if len(failed) != 1 {
		t.Fatalf("callback failures logged = %d, want 1", len(failed))
	}
	if failed[0].ContextMap()["script"] != "test" {
		t.Errorf("failure context = %v", failed[0].ContextMap())
	}
}

func TestCallbackAfterClose(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	script, err := LoadString("test", `keychord.bind("x", function() end)`, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defs := script.Definitions()
	script.Close()

	defs[0].Callback()
	if logs.FilterMessage("hotkey callback failed").Len() != 1 {
		t.Error("callback on a closed script should log a failure")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotkeys.lua")
	if err := os.WriteFile(path, []byte(`keychord.bind("F2", "Rename", function() end)`), 0o644); err != nil {
		t.Fatal(err)
	}

	script, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	defer script.Close()

	if script.Name() != path {
		t.Errorf("Name = %q, want %q", script.Name(), path)
	}
	if defs := script.Definitions(); len(defs) != 1 || defs[0].Keys[0] != "f2" {
		t.Errorf("definitions = %+v", defs)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected error for a missing script")
	}
}
