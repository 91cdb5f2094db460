package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/config/watcher"
	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/transport/ws"
)

var (
	serveAddr  string
	serveWatch bool
)

// serveCmd runs the WebSocket bridge
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve hotkeys to browser clients over a WebSocket",
	Long: `Starts an HTTP server with a WebSocket endpoint at /ws and a health
check at /healthz.

Clients send {"type":"keydown","key":"Control","target":"body"} and
{"type":"keyup",...} frames. Every connection gets its own key state and
receives "bindings" on connect, "action" when a hotkey fires and "active"
when the indicator changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", true, "Push keymap changes to connected clients")
}

// serverOptions converts the server and hotkeys sections of c.
func serverOptions(c *config.Config, logger *zap.Logger) ws.Options {
	return ws.Options{
		Addr:              c.Server.Addr,
		AllowedOrigins:    c.Server.AllowedOrigins,
		PingInterval:      c.Server.PingInterval.Std(),
		ReadTimeout:       c.Server.ReadTimeout.Std(),
		WriteTimeout:      c.Server.WriteTimeout.Std(),
		MaxMessageSize:    c.Server.MaxMessageSize,
		IndicatorDuration: c.Hotkeys.IndicatorDuration.Std(),
		Ignore:            hotkey.TextEntryTargets(c.Hotkeys.IgnoreTargets...),
		Logger:            logger.Named("ws"),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	km, err := cfg.BuildKeymap()
	if err != nil {
		return err
	}

	opts := serverOptions(cfg, logger)
	if serveAddr != "" {
		opts.Addr = serveAddr
	}
	srv, err := ws.NewServer(km, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("websocket bridge started", zap.String("url", srv.URL()), zap.Int("bindings", len(km.Bindings)))
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", srv.URL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("websocket bridge stopping")
		return srv.Stop()
	})
	if serveWatch {
		g.Go(func() error {
			return watchKeymap(gctx, srv)
		})
	}
	return g.Wait()
}

// watchKeymap rebuilds the keymap when a config or keymap file changes
// and pushes it to the server, until ctx is done. A watcher that cannot
// start only disables reloading.
func watchKeymap(ctx context.Context, srv *ws.Server) error {
	w, err := watcher.New(watcher.WithLogger(logger.Named("watcher")))
	if err != nil {
		logger.Warn("keymap reload disabled", zap.Error(err))
		return nil
	}
	for _, p := range cfg.WatchPaths() {
		if err := w.Watch(p); err != nil {
			logger.Warn("cannot watch file", zap.String("path", p), zap.Error(err))
		}
	}
	w.OnChange(func(ev watcher.Event) {
		if err := reloadKeymap(srv); err != nil {
			logger.Warn("keymap reload failed", zap.String("path", ev.Path), zap.Error(err))
			return
		}
		logger.Info("keymap reloaded", zap.String("path", ev.Path))
	})

	<-ctx.Done()
	return w.Close()
}

func reloadKeymap(srv *ws.Server) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	km, err := c.BuildKeymap()
	if err != nil {
		return err
	}
	return srv.SetKeymap(km)
}
