package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/plugin/lua"
)

var (
	printConfig bool
	writeKeymap string
)

// checkCmd validates the configuration and lists the bindings
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and list bindings",
	Long: `Loads the configuration, keymap files and script, then lists every
binding by category. Unknown actions and bad key specs are errors;
combinations bound more than once are reported as warnings, since only
the first of them can fire.

--write-keymap saves the effective keymap (defaults, files and inline
bindings merged) to a TOML, YAML or JSON file that keymap.files can
load.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&printConfig, "print-config", false, "Print the effective configuration as YAML")
	checkCmd.Flags().StringVar(&writeKeymap, "write-keymap", "", "Write the effective keymap to this file (.toml, .yaml or .json)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if printConfig {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	km, err := cfg.BuildKeymap()
	if err != nil {
		return err
	}

	known := make(map[string]bool)
	for _, name := range app.ActionNames() {
		known[name] = true
	}
	if _, err := keymap.Resolve(km, keymap.ResolverFunc(func(name string) (keymap.Action, bool) {
		return func() {}, known[name]
	})); err != nil {
		return err
	}

	if writeKeymap != "" {
		if err := km.SaveFile(writeKeymap); err != nil {
			return err
		}
		fmt.Fprintf(out, "keymap written to %s\n", writeKeymap)
	}

	listed := km.Clone()
	if path := cfg.ScriptPath(); path != "" {
		script, err := lua.LoadFile(path, lua.WithLogger(logger.Named("lua")))
		if err != nil {
			return err
		}
		listed.Bindings = append(listed.Bindings, scriptBindings(script.Definitions())...)
		script.Close()
	}

	source := "defaults"
	if cfg.Path != "" {
		source = cfg.Path
	}
	fmt.Fprintf(out, "config: %s\n", source)
	fmt.Fprintf(out, "bindings: %d\n", len(listed.Bindings))
	printBindings(out, listed.Bindings)

	conflicts := listed.Conflicts()
	for _, c := range conflicts {
		first := c.Bindings[0]
		fmt.Fprintf(out, "warning: %s is bound %d times; only %q fires\n",
			first.Label(), len(c.Bindings), describe(first))
		for _, b := range c.Bindings[1:] {
			fmt.Fprintf(out, "  shadowed: %s (%s)\n", describe(b), b.Action)
		}
	}
	if len(conflicts) == 0 {
		fmt.Fprintln(out, "ok")
	}
	return nil
}

func describe(b keymap.Binding) string {
	if b.Description != "" {
		return b.Description
	}
	return b.Action
}

// scriptBindings describes script definitions as bindings for listing.
func scriptBindings(defs []hotkey.Definition) []keymap.Binding {
	bindings := make([]keymap.Binding, 0, len(defs))
	for _, d := range defs {
		bindings = append(bindings, keymap.Binding{
			Keys:        strings.Join(d.Keys, "+"),
			Action:      "script",
			Description: d.Description,
			Category:    "Script",
		})
	}
	return bindings
}

func printBindings(out io.Writer, bindings []keymap.Binding) {
	for _, cat := range keymap.GroupByCategory(bindings) {
		fmt.Fprintf(out, "\n%s\n", cat.Name)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, b := range cat.Bindings {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", b.Label(), b.Description, b.Action)
		}
		_ = tw.Flush()
	}
	fmt.Fprintln(out)
}
