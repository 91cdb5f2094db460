package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
)

var runWatch bool

// runCmd starts the terminal demo
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the terminal demo",
	Long: `Takes over the terminal and matches key presses against the keymap.

The shortcut list appears after a short delay; press ? (or F1) to toggle
it. The status line shows the held keys and the last hotkey. Logging is
off unless log.file is set, since the screen owns the terminal.`,
	Args: cobra.NoArgs,
	RunE: runTerminal,
}

func init() {
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", true, "Reload the keymap when config, keymap or script files change")
}

func runTerminal(cmd *cobra.Command, args []string) error {
	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Watch:      runWatch,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
