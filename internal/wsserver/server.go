// Package wsserver fronts the PTY fabric with the hybrid binary/JSON
// protocol described in §4.3: a compact binary framing for hot-path input
// and a structured JSON framing for control, plus a read-side coalescing
// scheduler. Grounded on internal/routes/terminal.go's handleSSHTerminal —
// generalized from one PocketBase-authenticated route handling a single
// connector into a loopback-only server multiplexing many sessions through
// a session.Manager.
package wsserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/websoft9/sshbridge/internal/session"
	"github.com/websoft9/sshbridge/internal/sshx"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Loopback-only server (default 127.0.0.1:9001); the desktop shell is
	// the sole client, so origin checking adds nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// outboundQueueCap bounds the per-connection sender channel. It is sized
// generously rather than being truly unbounded (Go has no unbounded
// channel); when it is full, send drops the frame with a warning instead of
// blocking the caller.
const outboundQueueCap = 4096

// Server accepts WebSocket connections on a loopback address and bridges
// them to a session.Manager.
type Server struct {
	addr    string
	manager *session.Manager
	log     zerolog.Logger
	http    *http.Server
}

// New constructs a Server bound to addr (e.g. "127.0.0.1:9001").
func New(addr string, manager *session.Manager, log zerolog.Logger) *Server {
	return &Server{addr: addr, manager: manager, log: log.With().Str("component", "wsserver").Logger()}
}

// ListenAndServe blocks serving connections until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	s.http = &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &connHandler{
		conn:     conn,
		manager:  s.manager,
		log:      s.log.With().Str("remote_addr", r.RemoteAddr).Logger(),
		outbound: make(chan controlFrame, outboundQueueCap),
		readers:  make(map[string]context.CancelFunc),
	}
	c.run()
}

// connHandler manages one WebSocket connection: a single sender task draining
// an outbound queue so inbound handlers never block on the socket, and one
// coalescing reader task per started PTY (§4.3).
type connHandler struct {
	conn     *websocket.Conn
	manager  *session.Manager
	log      zerolog.Logger
	outbound chan controlFrame
	readers  map[string]context.CancelFunc
}

func (c *connHandler) run() {
	defer c.conn.Close()

	senderDone := make(chan struct{})
	go func() {
		defer close(senderDone)
		c.senderLoop()
	}()

	c.readLoop()

	close(c.outbound)
	for _, cancel := range c.readers {
		cancel()
	}
	<-senderDone
}

func (c *connHandler) senderLoop() {
	for frame := range c.outbound {
		data, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (c *connHandler) send(frame controlFrame) {
	select {
	case c.outbound <- frame:
	default:
		c.log.Warn().Msg("outbound queue full, dropping frame")
	}
}

func (c *connHandler) readLoop() {
	for {
		mt, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		switch mt {
		case websocket.BinaryMessage:
			c.handleBinary(msg)
		case websocket.TextMessage:
			c.handleControl(msg)
		}
	}
}

func (c *connHandler) handleBinary(msg []byte) {
	if len(msg) < minBinaryFrameLen || msg[0] != opcodeInput {
		c.log.Warn().Int("len", len(msg)).Msg("dropping undersized or unknown binary frame")
		return
	}
	sessionID := string(msg[1:minBinaryFrameLen])
	payload := msg[minBinaryFrameLen:]
	if err := c.manager.WriteToPty(sessionID, payload); err != nil {
		c.sendError(err)
	}
}

func (c *connHandler) handleControl(msg []byte) {
	var frame controlFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		c.sendError(sshx.NewProtocolError("malformed control frame"))
		return
	}

	switch frame.Type {
	case ctrlStartPty:
		c.onStartPty(frame)
	case ctrlInput:
		if err := c.manager.WriteToPty(frame.SessionID, frame.Data); err != nil {
			c.sendError(err)
		}
	case ctrlResize:
		c.onResize(frame)
	case ctrlPause:
		c.log.Debug().Str("session_id", frame.SessionID).Msg("pause requested (not yet gating reader, see SPEC_FULL.md §9)")
		c.send(controlFrame{Type: ctrlSuccess, SessionID: frame.SessionID, Message: "paused"})
	case ctrlResume:
		c.log.Debug().Str("session_id", frame.SessionID).Msg("resume requested (not yet gating reader, see SPEC_FULL.md §9)")
		c.send(controlFrame{Type: ctrlSuccess, SessionID: frame.SessionID, Message: "resumed"})
	case ctrlClose:
		c.onClose(frame)
	default:
		c.sendError(sshx.NewProtocolError("unknown control frame type"))
	}
}

func (c *connHandler) onStartPty(frame controlFrame) {
	pty, err := c.manager.StartPtySession(frame.SessionID, frame.Cols, frame.Rows)
	if err != nil {
		c.sendError(err)
		return
	}
	_ = pty

	ctx, cancel := context.WithCancel(context.Background())
	c.readers[frame.SessionID] = cancel
	go runCoalescer(ctx, frame.SessionID, c.manager, c.send, c.log)

	c.send(controlFrame{Type: ctrlSuccess, SessionID: frame.SessionID, Message: "pty started"})
}

func (c *connHandler) onResize(frame controlFrame) {
	// §9: acknowledged on the wire but not propagated to the channel.
	c.send(controlFrame{Type: ctrlSuccess, SessionID: frame.SessionID, Message: "resize acknowledged"})
}

func (c *connHandler) onClose(frame controlFrame) {
	if cancel, ok := c.readers[frame.SessionID]; ok {
		cancel()
		delete(c.readers, frame.SessionID)
	}
	if err := c.manager.ClosePtySession(frame.SessionID); err != nil {
		c.sendError(err)
		return
	}
	c.send(controlFrame{Type: ctrlSuccess, SessionID: frame.SessionID, Message: "closed"})
}

func (c *connHandler) sendError(err error) {
	c.send(controlFrame{Type: ctrlError, Message: err.Error()})
}
