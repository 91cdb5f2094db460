package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/keymap"
)

// ErrServerClosed is returned when starting a stopped server.
var ErrServerClosed = errors.New("ws: server closed")

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Use "127.0.0.1:0" for an OS-assigned port.
	Addr string

	// AllowedOrigins lists the Origin headers accepted on upgrade. "*"
	// accepts any origin. When empty, only same-host origins are accepted.
	// Requests without an Origin header are always accepted.
	AllowedOrigins []string

	PingInterval   time.Duration
	ReadTimeout    time.Duration // must exceed PingInterval
	WriteTimeout   time.Duration
	MaxMessageSize int64

	// IndicatorDuration and Ignore configure each connection's hotkeys.
	IndicatorDuration time.Duration
	Ignore            hotkey.IgnoreFunc

	Logger *zap.Logger
}

// DefaultOptions returns the default server options.
func DefaultOptions() Options {
	return Options{
		Addr:              "127.0.0.1:8080",
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxMessageSize:    4096,
		IndicatorDuration: hotkey.DefaultIndicatorDuration,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Addr == "" {
		o.Addr = d.Addr
	}
	if o.PingInterval <= 0 {
		o.PingInterval = d.PingInterval
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = d.ReadTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = d.WriteTimeout
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.IndicatorDuration <= 0 {
		o.IndicatorDuration = d.IndicatorDuration
	}
	if o.Ignore == nil {
		o.Ignore = hotkey.DefaultIgnore()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Server accepts WebSocket key streams and runs hotkeys for each of them.
//
// Lock ordering: Server.mu is never held while writing to a connection.
type Server struct {
	opts     Options
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	keymap   *keymap.Keymap
	sessions map[*session]struct{}
	closed   bool

	listener  net.Listener
	server    *http.Server
	closeOnce sync.Once
}

// NewServer creates a server for km. The keymap is checked up front so
// a bad key spec fails here rather than on the first connection.
func NewServer(km *keymap.Keymap, opts Options) (*Server, error) {
	if err := checkKeymap(km); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	s := &Server{
		opts:     opts,
		logger:   opts.Logger,
		keymap:   km.Clone(),
		sessions: make(map[*session]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s, nil
}

// acceptAll resolves every action name. Connections replace the
// callbacks with ones that report the action to the client.
var acceptAll = keymap.ResolverFunc(func(string) (keymap.Action, bool) {
	return func() {}, true
})

// checkKeymap resolves km with every action accepted, which leaves only
// key spec errors.
func checkKeymap(km *keymap.Keymap) error {
	if km == nil {
		return errors.New("ws: nil keymap")
	}
	_, err := keymap.Resolve(km, acceptAll)
	return err
}

// Handler returns the HTTP handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start listens on the configured address and serves in the background.
// Stop shuts it down.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	if s.server != nil {
		s.mu.Unlock()
		return errors.New("ws: already started")
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("ws: listen: %w", err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	srv := s.server
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("websocket server failed", zap.Error(err))
		}
	}()

	s.logger.Info("websocket server started", zap.String("url", s.URL()))
	return nil
}

// Run starts the server and blocks until ctx is done, then stops it.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Addr returns the listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the WebSocket URL, or "" before Start.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	return "ws://" + addr + "/ws"
}

// Stop closes every connection and shuts the HTTP server down. It is
// safe to call more than once.
func (s *Server) Stop() error {
	var stopErr error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		sessions := make([]*session, 0, len(s.sessions))
		for sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		srv := s.server
		s.mu.Unlock()

		for _, sess := range sessions {
			sess.close(websocket.CloseGoingAway, "server stopping")
		}

		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("ws: shutdown: %w", err)
			}
		}
		s.logger.Info("websocket server stopped")
	})
	return stopErr
}

// SetKeymap replaces the keymap. Open connections are rebound and sent
// the new binding list.
func (s *Server) SetKeymap(km *keymap.Keymap) error {
	if err := checkKeymap(km); err != nil {
		return err
	}
	km = km.Clone()

	s.mu.Lock()
	s.keymap = km
	sessions := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.bind()
	}
	return nil
}

// Keymap returns a copy of the current keymap.
func (s *Server) Keymap() *keymap.Keymap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keymap.Clone()
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.opts.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		http.Error(w, "server closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed",
			zap.String("remote", r.RemoteAddr),
			zap.String("origin", r.Header.Get("Origin")),
			zap.Error(err))
		return
	}

	sess := newSession(s, conn)
	if !s.register(sess) {
		sess.close(websocket.CloseGoingAway, "server stopping")
		return
	}
	defer s.unregister(sess)

	sess.serve()
}

func (s *Server) register(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[sess] = struct{}{}
	return true
}

func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

func (s *Server) currentKeymap() *keymap.Keymap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keymap
}

type health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health{Status: "ok", Connections: s.ConnectionCount()})
}
