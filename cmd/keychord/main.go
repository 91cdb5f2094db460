// Package main is the keychord command: a terminal demo of level-triggered
// hotkeys, a WebSocket bridge for browser clients, and a config checker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	// Global flags
	configPath string
	logLevel   string

	// Loaded by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "keychord",
	Short: "Level-triggered keyboard shortcuts",
	Long: `keychord matches the set of currently held keys against a keymap.

A combination fires while it is held, regardless of the order the keys
went down, and releasing one key of a larger chord can fire a smaller one.

Run "keychord run" for the terminal demo or "keychord serve" to drive
hotkeys from a browser over a WebSocket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			logger = zap.NewNop()
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		lc := app.LoggerConfigFrom(cfg.Log)
		if logLevel != "" {
			lc.Level = logLevel
		}
		if cmd == runCmd {
			logger, err = app.TerminalLogger(lc)
		} else {
			logger, err = app.NewLogger(lc)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "keychord %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("KEYCHORD_CONFIG"), "Configuration file (TOML or YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log.level)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
