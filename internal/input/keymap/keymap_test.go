package keymap

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/key"
)

func TestNewKeymap(t *testing.T) {
	km := NewKeymap("test")

	if km.Name != "test" {
		t.Errorf("Name = %q, want %q", km.Name, "test")
	}
	if len(km.Bindings) != 0 {
		t.Errorf("Bindings should be empty, got %d", len(km.Bindings))
	}
}

func TestKeymapBuilders(t *testing.T) {
	km := NewKeymap("test").
		WithSource("test-source").
		Add("Ctrl+K", "palette.open").
		AddBinding(NewBinding("?", "hint.toggle").WithDescription("Hints").WithCategory("Help"))

	if km.Source != "test-source" {
		t.Errorf("Source = %q, want %q", km.Source, "test-source")
	}
	if len(km.Bindings) != 2 {
		t.Fatalf("len(Bindings) = %d, want %d", len(km.Bindings), 2)
	}
	if km.Bindings[1].Description != "Hints" || km.Bindings[1].Category != "Help" {
		t.Errorf("Bindings[1] = %+v", km.Bindings[1])
	}
}

func TestKeymapValidate(t *testing.T) {
	tests := []struct {
		name    string
		keymap  *Keymap
		wantErr bool
	}{
		{
			name: "valid keymap",
			keymap: &Keymap{
				Bindings: []Binding{
					{Keys: "Ctrl+K", Action: "palette.open"},
					{Keys: "<C-Enter>", Action: "code.run"},
				},
			},
		},
		{
			name:    "empty keys",
			keymap:  &Keymap{Bindings: []Binding{{Keys: "", Action: "x"}}},
			wantErr: true,
		},
		{
			name:    "empty action",
			keymap:  &Keymap{Bindings: []Binding{{Keys: "k", Action: ""}}},
			wantErr: true,
		},
		{
			name:    "bad combo",
			keymap:  &Keymap{Bindings: []Binding{{Keys: "Ctrl++K", Action: "x"}}},
			wantErr: true,
		},
		{
			name:    "repeated key",
			keymap:  &Keymap{Bindings: []Binding{{Keys: "Ctrl+Control", Action: "x"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.keymap.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeymapClone(t *testing.T) {
	km := NewKeymap("orig").Add("a", "x")
	clone := km.Clone()
	clone.Bindings[0].Action = "changed"
	clone.Name = "clone"

	if km.Bindings[0].Action != "x" {
		t.Error("Clone shares bindings with the original")
	}
	if km.Name != "orig" {
		t.Error("Clone shares name with the original")
	}
}

func TestBindingCanonical(t *testing.T) {
	tests := []struct {
		keys      string
		canonical string
		label     string
	}{
		{"Ctrl+K", "control+k", "CONTROL + K"},
		{"K+Ctrl", "control+k", "K + CONTROL"},
		{"<C-S-p>", "control+p+shift", "CONTROL + SHIFT + P"},
		{"?", "?", "?"},
		{"Space", " ", "Space"},
		{"Ctrl++", "++control", "CONTROL + +"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			b := NewBinding(tt.keys, "x")
			if got := b.Canonical(); got != tt.canonical {
				t.Errorf("Canonical() = %q, want %q", got, tt.canonical)
			}
			if got := b.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := NewKeymap("base").
		Add("Ctrl+K", "palette.open").
		Add("Ctrl+B", "sidebar.toggle")
	override := NewKeymap("user").
		WithSource("user").
		Add("K+Control", "custom.palette").
		Add("Alt+X", "custom.extra")

	merged := Merge(base, override)

	want := []string{"custom.palette", "sidebar.toggle", "custom.extra"}
	if len(merged.Bindings) != len(want) {
		t.Fatalf("len(Bindings) = %d, want %d", len(merged.Bindings), len(want))
	}
	for i, action := range want {
		if merged.Bindings[i].Action != action {
			t.Errorf("Bindings[%d].Action = %q, want %q", i, merged.Bindings[i].Action, action)
		}
	}
	if merged.Name != "user" || merged.Source != "user" {
		t.Errorf("Name/Source = %q/%q, want user/user", merged.Name, merged.Source)
	}
	if base.Bindings[0].Action != "palette.open" {
		t.Error("Merge modified the base keymap")
	}

	if got := Merge(nil, nil); len(got.Bindings) != 0 {
		t.Errorf("Merge(nil, nil) has %d bindings", len(got.Bindings))
	}
}

func TestKeymapConflicts(t *testing.T) {
	km := NewKeymap("test").
		Add("Ctrl+K", "a").
		Add("Alt+K", "b").
		Add("<C-k>", "c")

	conflicts := km.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("len(Conflicts()) = %d, want 1", len(conflicts))
	}
	if conflicts[0].Canonical != "control+k" {
		t.Errorf("Canonical = %q, want %q", conflicts[0].Canonical, "control+k")
	}
	if len(conflicts[0].Bindings) != 2 {
		t.Errorf("len(Bindings) = %d, want 2", len(conflicts[0].Bindings))
	}
}

func TestGroupByCategory(t *testing.T) {
	bindings := []Binding{
		{Keys: "F1", Action: "a", Category: "Help"},
		{Keys: "Ctrl+K", Action: "b", Category: "General"},
		{Keys: "Escape", Action: "c", Category: "Help"},
		{Keys: "x", Action: "d"},
	}

	want := []BindingCategory{
		{Name: "Help", Bindings: []Binding{bindings[0], bindings[2]}},
		{Name: "General", Bindings: []Binding{bindings[1]}},
		{Name: "Other", Bindings: []Binding{bindings[3]}},
	}
	if diff := cmp.Diff(want, GroupByCategory(bindings)); diff != "" {
		t.Errorf("GroupByCategory() mismatch (-want +got):\n%s", diff)
	}
}

func TestActionsRegistry(t *testing.T) {
	actions := NewActions()
	called := 0

	if err := actions.Register("b.second", func() { called++ }); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	actions.MustRegister("a.first", func() {})

	if err := actions.Register("b.second", func() {}); !errors.Is(err, ErrDuplicateAction) {
		t.Errorf("duplicate Register() error = %v, want ErrDuplicateAction", err)
	}
	if err := actions.Register("nil.fn", nil); err == nil {
		t.Error("Register(nil) should fail")
	}

	fn, ok := actions.Lookup("b.second")
	if !ok {
		t.Fatal("Lookup(b.second) not found")
	}
	fn()
	if called != 1 {
		t.Errorf("called = %d, want 1", called)
	}

	if _, ok := actions.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}

	names := actions.Names()
	if strings.Join(names, ",") != "a.first,b.second" {
		t.Errorf("Names() = %v", names)
	}
}

func TestResolve(t *testing.T) {
	var fired []string
	resolver := ResolverFunc(func(name string) (Action, bool) {
		if name == "missing" {
			return nil, false
		}
		return func() { fired = append(fired, name) }, true
	})

	km := NewKeymap("test").
		AddBinding(NewBinding("Ctrl+K", "palette.open").WithDescription("Open command palette")).
		Add("?", "hint.toggle")

	defs, err := Resolve(km, resolver)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("len(defs) = %d, want 2", len(defs))
	}
	if got := strings.Join(defs[0].Keys, ","); got != "control,k" {
		t.Errorf("defs[0].Keys = %q, want %q", got, "control,k")
	}
	if defs[0].Description != "Open command palette" {
		t.Errorf("defs[0].Description = %q", defs[0].Description)
	}
	if defs[1].Description != "hint.toggle" {
		t.Errorf("defs[1].Description = %q, want the action name", defs[1].Description)
	}

	defs[0].Callback()
	if len(fired) != 1 || fired[0] != "palette.open" {
		t.Errorf("fired = %v", fired)
	}
}

func TestResolveErrors(t *testing.T) {
	actions := NewActions()
	actions.MustRegister("ok", func() {})

	tests := []struct {
		name    string
		binding Binding
		target  error
	}{
		{"unknown action", NewBinding("a", "missing"), ErrUnknownAction},
		{"bad keys", NewBinding("", "ok"), key.ErrEmptySpec},
		{"invalid combo", NewBinding("Ctrl++x", "ok"), key.ErrInvalidSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km := NewKeymap("test").Add("b", "ok").AddBinding(tt.binding)
			_, err := Resolve(km, actions)
			if !errors.Is(err, tt.target) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.target)
			}
			var re *ResolveError
			if !errors.As(err, &re) {
				t.Fatalf("error %T is not *ResolveError", err)
			}
			if re.Index != 1 {
				t.Errorf("Index = %d, want 1", re.Index)
			}
		})
	}
}

func TestDuplicates(t *testing.T) {
	defs := []hotkey.Definition{
		{Keys: []string{"control", "k"}},
		{Keys: []string{"?"}},
		{Keys: []string{"k", "control"}},
		{Keys: []string{"?"}},
		{Keys: []string{"control", "k"}},
		{Keys: nil},
	}

	want := []Duplicate{
		{Canonical: "control+k", First: 0, Shadowed: []int{2, 4}},
		{Canonical: "?", First: 1, Shadowed: []int{3}},
	}
	if diff := cmp.Diff(want, Duplicates(defs)); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{
			name:   "toml",
			format: FormatTOML,
			data: `name = "test-keymap"
source = "test"

[[bindings]]
keys = "Ctrl+K"
action = "palette.open"
description = "Open command palette"
category = "General"

[[bindings]]
keys = "?"
action = "hint.toggle"
`,
		},
		{
			name:   "yaml",
			format: FormatYAML,
			data: `name: test-keymap
source: test
bindings:
  - keys: Ctrl+K
    action: palette.open
    description: Open command palette
    category: General
  - keys: "?"
    action: hint.toggle
`,
		},
		{
			name:   "json",
			format: FormatJSON,
			data: `{
				"name": "test-keymap",
				"source": "test",
				"bindings": [
					{"keys": "Ctrl+K", "action": "palette.open", "description": "Open command palette", "category": "General"},
					{"keys": "?", "action": "hint.toggle"}
				]
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := NewLoader().LoadReader(strings.NewReader(tt.data), tt.format)
			if err != nil {
				t.Fatalf("LoadReader() error = %v", err)
			}
			if km.Name != "test-keymap" {
				t.Errorf("Name = %q, want %q", km.Name, "test-keymap")
			}
			if km.Source != "test" {
				t.Errorf("Source = %q, want %q", km.Source, "test")
			}
			if len(km.Bindings) != 2 {
				t.Fatalf("len(Bindings) = %d, want 2", len(km.Bindings))
			}
			b := km.Bindings[0]
			if b.Keys != "Ctrl+K" || b.Action != "palette.open" {
				t.Errorf("Bindings[0] = %+v", b)
			}
			if b.Description != "Open command palette" || b.Category != "General" {
				t.Errorf("Bindings[0] = %+v", b)
			}
			if km.Bindings[1].Keys != "?" {
				t.Errorf("Bindings[1].Keys = %q, want %q", km.Bindings[1].Keys, "?")
			}
		})
	}
}

func TestLoaderErrors(t *testing.T) {
	l := NewLoader()

	if _, err := l.LoadReader(strings.NewReader("{"), FormatJSON); err == nil {
		t.Error("LoadReader(bad json) should fail")
	}
	if _, err := l.LoadReader(strings.NewReader(`{"bogus": 1}`), FormatJSON); err == nil {
		t.Error("LoadReader(unknown field) should fail")
	}
	if _, err := l.LoadReader(strings.NewReader(""), Format("ini")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadReader(ini) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := l.LoadFile("keys.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadFile(keys.ini) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()

	write := func(name, data string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.toml", "[[bindings]]\nkeys = \"a\"\naction = \"x\"\n")
	write("b.yml", "bindings:\n  - keys: b\n    action: y\n")
	write("c.json", "{not json")
	write("notes.txt", "ignored")

	l := NewLoader()
	l.AddSearchPath(dir)
	l.AddSearchPath(filepath.Join(dir, "missing"))

	keymaps, errs := l.LoadAll()
	if len(keymaps) != 2 {
		t.Fatalf("len(keymaps) = %d, want 2", len(keymaps))
	}
	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1: %v", len(errs), errs)
	}
	if keymaps[0].Name != "a" {
		t.Errorf("keymaps[0].Name = %q, want file stem %q", keymaps[0].Name, "a")
	}
	if keymaps[1].Source != filepath.Join(dir, "b.yml") {
		t.Errorf("keymaps[1].Source = %q", keymaps[1].Source)
	}
}

func TestKeymapSaveFile(t *testing.T) {
	dir := t.TempDir()
	km := NewKeymap("saved").
		AddBinding(NewBinding("Ctrl+K", "palette.open").WithDescription("Open"))

	for _, name := range []string{"k.toml", "k.yaml", "k.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := km.SaveFile(path); err != nil {
				t.Fatalf("SaveFile() error = %v", err)
			}
			loaded, err := NewLoader().LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if loaded.Name != "saved" || len(loaded.Bindings) != 1 {
				t.Fatalf("loaded = %+v", loaded)
			}
			if loaded.Bindings[0].Description != "Open" {
				t.Errorf("Description = %q, want %q", loaded.Bindings[0].Description, "Open")
			}
		})
	}
}

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()
	if err := km.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if conflicts := km.Conflicts(); len(conflicts) != 0 {
		t.Errorf("default keymap has conflicts: %+v", conflicts)
	}
	for _, b := range km.Bindings {
		if b.Canonical() == "?" {
			t.Error("default keymap must leave ? to the hint panel")
		}
		if b.Description == "" {
			t.Errorf("binding %s has no description", b.Keys)
		}
	}
}
