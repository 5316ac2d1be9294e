// Package sshx wraps a single authenticated SSH transport and exposes the
// channel operations (exec, SFTP, PTY shell, direct-tcpip) the rest of the
// bridge is built on. It is grounded on this codebase's
// internal/terminal/ssh.go and internal/terminal/sftp.go, generalized from a
// single-purpose terminal connector into the full multiplexed client the
// specification calls for.
package sshx

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	cryptossh "golang.org/x/crypto/ssh"
)

const dialTimeout = 10 * time.Second

// Client is the exclusive owner of one authenticated SSH transport and the
// background port-forwarder tasks spawned alongside it. It is created fresh
// per session by the Session Manager and is safe for concurrent use by
// many callers of ExecuteCommand (each opens its own channel — see §4.1).
type Client struct {
	mu         sync.RWMutex
	transport  *cryptossh.Client
	forwarders []*forwarder
	cfg        Config

	closeOnce sync.Once
}

// Connect dials host:port, performs the SSH handshake and authentication,
// and — on success — starts one listener per configured forward port.
// Binding failures on any local forward port fail the whole connect.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	method, err := authMethod(cfg)
	if err != nil {
		return nil, err
	}

	clientCfg := &cryptossh.ClientConfig{
		User:            cfg.Username,
		Auth:            []cryptossh.AuthMethod{method},
		HostKeyCallback: cryptossh.InsecureIgnoreHostKey(), // see SPEC_FULL.md §9 open question
		Timeout:         dialTimeout,
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	type dialResult struct {
		conn *cryptossh.Client
		err  error
	}
	ch := make(chan dialResult, 1)
	go func() {
		conn, err := cryptossh.Dial("tcp", addr, clientCfg)
		ch <- dialResult{conn, err}
	}()

	var transport *cryptossh.Client
	select {
	case <-ctx.Done():
		return nil, errCancelled("connect cancelled")
	case r := <-ch:
		if r.err != nil {
			return nil, classifyDialError(r.err)
		}
		transport = r.conn
	}

	c := &Client{transport: transport, cfg: cfg}

	for _, fp := range cfg.ForwardPorts {
		fw, err := newForwarder(transport, fp)
		if err != nil {
			_ = c.Disconnect()
			return nil, err
		}
		c.forwarders = append(c.forwarders, fw)
		fw.start()
	}

	return c, nil
}

// classifyDialError distinguishes an authentication rejection from a
// transport-level failure (DNS, refused connection, handshake error) so
// callers see "Authentication failed" rather than a generic dial error.
func classifyDialError(err error) *Error {
	if _, ok := err.(*cryptossh.AuthError); ok {
		return errAuthFailed("authentication failed", err)
	}
	// golang.org/x/crypto/ssh reports a failed/partial auth exchange as a
	// plain error whose text names the method; match it rather than only
	// the typed AuthError so password rejections are classified the same
	// way as public-key rejections.
	if isAuthFailureText(err.Error()) {
		return errAuthFailed("authentication failed", err)
	}
	return errTransport("ssh dial failed", err)
}

func isAuthFailureText(msg string) bool {
	for _, s := range []string{"unable to authenticate", "no supported methods remain"} {
		if containsFold(msg, s) {
			return true
		}
	}
	return false
}

// Transport returns the underlying SSH connection for use by package
// functions that open additional channels (exec, sftp, pty, direct-tcpip).
// Callers take a read lock — many channels may be open concurrently.
func (c *Client) Transport() *cryptossh.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport
}

// Disconnect aborts all owned forwarders and closes the transport with
// reason "by application". It is idempotent: calling it more than once is a
// no-op after the first call.
func (c *Client) Disconnect() error {
	var err error
	c.closeOnce.Do(func() {
		for _, fw := range c.forwarders {
			fw.stop()
		}
		c.mu.Lock()
		t := c.transport
		c.mu.Unlock()
		if t != nil {
			err = t.Close()
		}
	})
	return err
}
