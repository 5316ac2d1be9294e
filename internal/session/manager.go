// Package session implements the process-wide mapping from client-supplied
// session identifiers to SSH clients and PTY sessions. It is grounded on
// internal/terminal/session.go's sessionRegistry — generalized from a single
// map with idle-timeout eviction into the three-map manager with cancellable
// connect and replace-on-reconnect semantics the specification calls for.
package session

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/websoft9/sshbridge/internal/sshx"
)

// defaultConnectRateLimit caps how often this process will dial out new SSH
// connections, independent of how many distinct session ids ask for one —
// a runaway or scripted caller retrying ssh_connect in a loop should not be
// able to hammer a downstream host.
const defaultConnectRateLimit rate.Limit = 5

// Manager owns the three mutable maps described in the data model: sessions,
// pty_sessions, and pending_connections. Each is guarded by its own
// reader/writer lock so a lookup on one never blocks mutation of another.
type Manager struct {
	sessionsMu sync.RWMutex
	sessions   map[string]*sshx.Client

	ptyMu   sync.RWMutex
	ptys    map[string]*sshx.PtySession

	pendingMu sync.RWMutex
	pending   map[string]context.CancelFunc

	connectLimiter *rate.Limiter
}

// NewManager returns an empty Manager ready for use.
func NewManager() *Manager {
	return &Manager{
		sessions:       make(map[string]*sshx.Client),
		ptys:           make(map[string]*sshx.PtySession),
		pending:        make(map[string]context.CancelFunc),
		connectLimiter: rate.NewLimiter(defaultConnectRateLimit, int(defaultConnectRateLimit)+1),
	}
}

// CreateSession closes any prior session under id (best-effort — "not found"
// is not an error), then races connect against cancellation. The pending
// handle is always cleared before returning, regardless of outcome
// (invariant 2 and 3).
func (m *Manager) CreateSession(ctx context.Context, id string, cfg sshx.Config) (*sshx.Client, error) {
	if err := m.connectLimiter.Wait(ctx); err != nil {
		return nil, sshx.NewCancelledError("ssh_connect cancelled waiting on rate limit")
	}

	_ = m.CloseSession(id)

	connectCtx, cancel := context.WithCancel(ctx)
	m.setPending(id, cancel)
	defer m.clearPending(id)

	client, err := sshx.Connect(connectCtx, cfg)
	if err != nil {
		return nil, err
	}

	m.sessionsMu.Lock()
	m.sessions[id] = client
	m.sessionsMu.Unlock()

	return client, nil
}

func (m *Manager) setPending(id string, cancel context.CancelFunc) {
	m.pendingMu.Lock()
	m.pending[id] = cancel
	m.pendingMu.Unlock()
}

func (m *Manager) clearPending(id string) {
	m.pendingMu.Lock()
	delete(m.pending, id)
	m.pendingMu.Unlock()
}

// CancelPendingConnection removes and signals the cancellation handle for id,
// reporting whether one existed.
func (m *Manager) CancelPendingConnection(id string) bool {
	m.pendingMu.Lock()
	cancel, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.pendingMu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// GetSession returns the SSH client for id, or nil if none exists.
func (m *Manager) GetSession(id string) *sshx.Client {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	return m.sessions[id]
}

// ListSessions returns every currently registered session identifier.
func (m *Manager) ListSessions() []string {
	m.sessionsMu.RLock()
	defer m.sessionsMu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// CloseSession closes the PTY first, then the SSH client (invariant 1),
// swallowing "not found" for both.
func (m *Manager) CloseSession(id string) error {
	_ = m.ClosePtySession(id)

	m.sessionsMu.Lock()
	client, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.sessionsMu.Unlock()

	if !ok {
		return nil
	}
	return client.Disconnect()
}

// StartPtySession looks up the owning SSH client and creates a PTY on it,
// storing the result under id.
func (m *Manager) StartPtySession(id string, cols, rows int) (*sshx.PtySession, error) {
	client := m.GetSession(id)
	if client == nil {
		return nil, sshx.ErrSessionNotFound(id)
	}

	pty, err := client.CreatePtySession(cols, rows)
	if err != nil {
		return nil, err
	}

	m.ptyMu.Lock()
	m.ptys[id] = pty
	m.ptyMu.Unlock()

	return pty, nil
}

// WriteToPty verifies the owning SSH session still exists, then writes
// through to the PTY. This prevents writing to a dangling PTY during a
// torn-down session (§4.5).
func (m *Manager) WriteToPty(id string, data []byte) error {
	if m.GetSession(id) == nil {
		return sshx.ErrSessionNotFound(id)
	}
	pty := m.getPty(id)
	if pty == nil {
		return sshx.ErrPtyNotFound(id)
	}
	return pty.Write(data)
}

// ReadFromPty verifies the owning SSH session still exists, then reads
// through from the PTY.
func (m *Manager) ReadFromPty(id string, timeoutMs int) ([]byte, error) {
	if m.GetSession(id) == nil {
		return nil, sshx.ErrSessionNotFound(id)
	}
	pty := m.getPty(id)
	if pty == nil {
		return nil, sshx.ErrPtyNotFound(id)
	}
	return pty.Read(msToDuration(timeoutMs))
}

// ClosePtySession looks up, closes, and removes the PTY for id.
func (m *Manager) ClosePtySession(id string) error {
	m.ptyMu.Lock()
	pty, ok := m.ptys[id]
	if ok {
		delete(m.ptys, id)
	}
	m.ptyMu.Unlock()

	if !ok {
		return sshx.ErrPtyNotFound(id)
	}
	return pty.Close()
}

func (m *Manager) getPty(id string) *sshx.PtySession {
	m.ptyMu.RLock()
	defer m.ptyMu.RUnlock()
	return m.ptys[id]
}
