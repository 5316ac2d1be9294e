package sshx

import (
	"fmt"
	"io"
	"net"
	"sync"

	cryptossh "golang.org/x/crypto/ssh"
)

// forwarder owns one local TCP listener and relays every accepted
// connection to a freshly opened direct-tcpip channel on the shared
// transport (§4.4). Grounded on internal/tunnel/server.go's
// runListener/forwardConn pair, adapted from the reverse (forwarded-tcpip)
// direction to the forward (direct-tcpip) direction this spec calls for.
type forwarder struct {
	transport *cryptossh.Client
	spec      ForwardPort
	listener  net.Listener

	wg sync.WaitGroup

	mu      sync.Mutex
	closers []io.Closer
}

// newForwarder binds 127.0.0.1:spec.LocalPort. A bind failure fails the
// whole Connect call (§4.1).
func newForwarder(transport *cryptossh.Client, spec ForwardPort) (*forwarder, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", spec.LocalPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errBindFailed(addr, err)
	}
	return &forwarder{transport: transport, spec: spec, listener: ln}, nil
}

// start runs the accept loop in the background. It survives individual
// connection errors; it exits only when the listener itself errors (which
// stop() triggers by closing it).
func (f *forwarder) start() {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			conn, err := f.listener.Accept()
			if err != nil {
				return
			}
			f.wg.Add(1)
			f.track(conn)
			go func() {
				defer f.wg.Done()
				defer f.untrack(conn)
				defer conn.Close()
				f.relay(conn)
			}()
		}
	}()
}

// relay opens a direct-tcpip channel for conn and copies data
// bidirectionally until either side ends.
func (f *forwarder) relay(conn net.Conn) {
	originHost, originPortStr, _ := net.SplitHostPort(conn.RemoteAddr().String())
	var originPort int
	fmt.Sscanf(originPortStr, "%d", &originPort)
	if originHost == "" {
		originHost = "127.0.0.1"
	}

	payload := cryptossh.Marshal(directTCPIPPayload{
		Addr:       f.spec.RemoteHost,
		Port:       uint32(f.spec.RemotePort),
		OriginAddr: originHost,
		OriginPort: uint32(originPort),
	})

	channel, reqs, err := f.transport.OpenChannel("direct-tcpip", payload)
	if err != nil {
		return
	}
	f.track(channel)
	defer f.untrack(channel)
	defer channel.Close()
	go cryptossh.DiscardRequests(reqs)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, _ = io.Copy(channel, conn) }()
	go func() { defer wg.Done(); _, _ = io.Copy(conn, channel) }()
	wg.Wait()
}

// track registers a closer so stop() can abort it instead of waiting on it.
func (f *forwarder) track(c io.Closer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closers = append(f.closers, c)
}

// untrack drops a closer once its relay has finished on its own.
func (f *forwarder) untrack(c io.Closer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, cur := range f.closers {
		if cur == c {
			f.closers = append(f.closers[:i], f.closers[i+1:]...)
			return
		}
	}
}

// stop closes the listener and every tracked in-flight connection/channel,
// then waits for the relay goroutines to unwind. Closing rather than
// gracefully draining is what makes this join an abort: io.Copy on a closed
// conn/channel returns promptly instead of blocking until the remote side
// ends the stream, so Client.Disconnect (which calls stop() before closing
// the transport) cannot hang on a live forwarded connection (§3 invariant 5,
// §4.4).
func (f *forwarder) stop() {
	_ = f.listener.Close()

	f.mu.Lock()
	closers := f.closers
	f.mu.Unlock()
	for _, c := range closers {
		_ = c.Close()
	}

	f.wg.Wait()
}

// directTCPIPPayload is the wire encoding for a "direct-tcpip" channel open
// request (RFC 4254 §7.2).
type directTCPIPPayload struct {
	Addr       string
	Port       uint32
	OriginAddr string
	OriginPort uint32
}
