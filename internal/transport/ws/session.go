package ws

import (
	"encoding/json"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dshills/keychord/internal/input/hotkey"
	"github.com/dshills/keychord/internal/input/keymap"
)

// session is one client connection and the hotkeys it drives.
//
// gorilla/websocket allows one concurrent writer; writeMu serializes
// frames from the read loop (actions) and the indicator timer (clears).
// bindMu serializes rebinds so the last one always installs the
// server's newest keymap.
type session struct {
	id     string
	srv    *Server
	conn   *websocket.Conn
	hk     *hotkey.Hotkeys
	logger *zap.Logger

	bindMu    sync.Mutex
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	id := uuid.NewString()
	sess := &session{
		id:   id,
		srv:  srv,
		conn: conn,
		logger: srv.logger.With(
			zap.String("conn", id),
			zap.String("remote", conn.RemoteAddr().String()),
		),
	}
	sess.hk = hotkey.New(nil,
		hotkey.WithIndicatorDuration(srv.opts.IndicatorDuration),
		hotkey.WithIgnore(srv.opts.Ignore),
		hotkey.WithLogger(sess.logger),
	)
	sess.hk.OnActiveChange(func(active string) {
		sess.write(newActiveFrame(active))
	})
	return sess
}

// bind resolves the server's current keymap against this connection: a
// match sends the bound action back to the client. The binding list
// follows.
func (c *session) bind() {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	km := c.srv.currentKeymap()
	defs, err := keymap.Resolve(km, acceptAll)
	if err != nil {
		// NewServer and SetKeymap reject such keymaps.
		c.logger.Error("keymap resolution failed", zap.Error(err))
		return
	}
	for i := range defs {
		frame := actionFrame{
			Type:        TypeAction,
			Action:      km.Bindings[i].Action,
			Description: defs[i].Description,
		}
		defs[i].Callback = func() { c.write(frame) }
	}
	c.hk.SetDefinitions(defs)
	c.write(bindingsFrame{Type: TypeBindings, Bindings: bindingInfos(km)})
}

// serve runs the read loop until the connection fails or closes.
func (c *session) serve() {
	opts := c.srv.opts
	c.conn.SetReadLimit(opts.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(opts.ReadTimeout)); err != nil {
		c.close(websocket.CloseInternalServerErr, "")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(opts.ReadTimeout))
	})

	c.logger.Info("client connected")
	c.bind()

	pingDone := make(chan struct{})
	go c.pingLoop(pingDone)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("connection handler panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
		close(pingDone)
		c.close(websocket.CloseNormalClosure, "")
		c.logger.Info("client disconnected")
	}()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			c.reject("expected a text frame")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed frame", zap.Error(err))
			c.reject("malformed frame: " + err.Error())
			continue
		}
		ev, ok := msg.Event()
		if !ok {
			c.logger.Warn("unsupported frame",
				zap.String("type", msg.Type),
				zap.String("key", msg.Key))
			c.reject("unsupported frame type " + `"` + msg.Type + `"`)
			continue
		}
		c.hk.Handle(ev)
	}
}

func (c *session) reject(message string) {
	c.write(errorFrame{Type: TypeError, Message: message})
}

func (c *session) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(c.srv.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.srv.opts.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug("ping failed", zap.Error(err))
				c.close(websocket.CloseGoingAway, "")
				return
			}
		}
	}
}

// write sends v as a JSON text frame. A failed write closes the
// connection, which ends the read loop.
func (c *session) write(v any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.srv.opts.WriteTimeout)); err != nil {
		c.close(websocket.CloseInternalServerErr, "")
		return
	}
	if err := c.conn.WriteJSON(v); err != nil {
		c.logger.Debug("write failed", zap.Error(err))
		c.close(websocket.CloseInternalServerErr, "")
	}
}

// close stops the hotkeys, sends a close frame if possible and closes
// the socket. Only the first call has any effect.
func (c *session) close(code int, text string) {
	c.closeOnce.Do(func() {
		c.hk.Close()
		msg := websocket.FormatCloseMessage(code, text)
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)) // best effort
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("close failed", zap.Error(err))
		}
	})
}
