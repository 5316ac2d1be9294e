package sshx

import (
	"sync"
	"sync/atomic"
	"time"

	cryptossh "golang.org/x/crypto/ssh"
)

const (
	inputQueueCap  = 1000
	outputQueueCap = 2000

	channelSetupTimeout  = 10 * time.Second
	ptyRequestTimeout    = 5 * time.Second
	shellRequestTimeout  = 5 * time.Second
	writeTimeout         = 5 * time.Second
	flushTimeout         = 1 * time.Second
	outputSendTimeout    = 5 * time.Second
	outputPollTimeout    = 100 * time.Millisecond
	closeJoinTimeout     = 2 * time.Second
	maxPayloadBytes      = 1 << 20 // 1 MiB
)

// PtySession is a single interactive shell channel with bounded input/output
// queues, two owned background pumps, terminal-size state, and an atomic
// closed flag (§4.2, §5).
type PtySession struct {
	channel cryptossh.Channel

	input  chan []byte
	output chan []byte

	closed    atomic.Bool
	closeOnce sync.Once
	stopCh    chan struct{}

	inputDone  chan struct{}
	outputDone chan struct{}

	sizeMu     sync.RWMutex
	cols, rows int
}

// validateSize enforces the 1≤cols,rows≤1000 invariant (§4.2, §8 property 4).
func validateSize(cols, rows int) error {
	if cols < 1 || cols > 1000 || rows < 1 || rows > 1000 {
		return errBadTerminalSize(cols, rows)
	}
	return nil
}

// CreatePtySession opens a session channel, requests a PTY and a shell, and
// starts the input/output pumps. Each setup stage is timeout-guarded
// per §4.2/§5.
func (c *Client) CreatePtySession(cols, rows int) (*PtySession, error) {
	if err := validateSize(cols, rows); err != nil {
		return nil, err
	}

	transport := c.Transport()
	if transport == nil {
		return nil, errNotConnected("ssh client is not connected")
	}

	type openResult struct {
		ch   cryptossh.Channel
		reqs <-chan *cryptossh.Request
		err  error
	}
	openCh := make(chan openResult, 1)
	go func() {
		ch, reqs, err := transport.OpenChannel("session", nil)
		openCh <- openResult{ch, reqs, err}
	}()

	var channel cryptossh.Channel
	var reqs <-chan *cryptossh.Request
	select {
	case r := <-openCh:
		if r.err != nil {
			return nil, errTransport("open session channel", r.err)
		}
		channel, reqs = r.ch, r.reqs
	case <-time.After(channelSetupTimeout):
		return nil, errChannelSetupTimeout("session channel")
	}
	go cryptossh.DiscardRequests(reqs)

	if err := requestPty(channel, cols, rows); err != nil {
		channel.Close()
		return nil, err
	}

	if err := requestShell(channel); err != nil {
		channel.Close()
		return nil, err
	}

	s := &PtySession{
		channel:    channel,
		input:      make(chan []byte, inputQueueCap),
		output:     make(chan []byte, outputQueueCap),
		stopCh:     make(chan struct{}),
		inputDone:  make(chan struct{}),
		outputDone: make(chan struct{}),
		cols:       cols,
		rows:       rows,
	}

	go s.inputPump()
	go s.outputPump()

	return s, nil
}

func requestPty(channel cryptossh.Channel, cols, rows int) error {
	type reply struct{ ok bool }
	done := make(chan reply, 1)
	go func() {
		modes := cryptossh.TerminalModes{
			cryptossh.ECHO:          1,
			cryptossh.TTY_OP_ISPEED: 14400,
			cryptossh.TTY_OP_OSPEED: 14400,
		}
		payload := cryptossh.Marshal(ptyRequestPayload{
			Term:     "xterm-256color",
			Columns:  uint32(cols),
			Rows:     uint32(rows),
			Width:    uint32(cols * 8),
			Height:   uint32(rows * 8),
			Modelist: encodeTerminalModes(modes),
		})
		ok, err := channel.SendRequest("pty-req", true, payload)
		done <- reply{ok && err == nil}
	}()
	select {
	case r := <-done:
		if !r.ok {
			return errTransport("request pty", nil)
		}
		return nil
	case <-time.After(ptyRequestTimeout):
		return errChannelSetupTimeout("pty-req")
	}
}

func requestShell(channel cryptossh.Channel) error {
	done := make(chan bool, 1)
	go func() {
		ok, err := channel.SendRequest("shell", true, nil)
		done <- ok && err == nil
	}()
	select {
	case ok := <-done:
		if !ok {
			return errTransport("request shell", nil)
		}
		return nil
	case <-time.After(shellRequestTimeout):
		return errChannelSetupTimeout("shell")
	}
}

// ptyRequestPayload mirrors RFC 4254 §6.2's pty-req payload. We build it
// manually (rather than via cryptossh.Session.RequestPty) because PtySession
// owns the raw channel directly, giving the input/output pumps exclusive
// control of reads and writes.
type ptyRequestPayload struct {
	Term     string
	Columns  uint32
	Rows     uint32
	Width    uint32
	Height   uint32
	Modelist string
}

// encodeTerminalModes serializes a TerminalModes map into the RFC 4254 §8
// wire encoding: repeated (opcode byte, uint32 big-endian argument) pairs
// terminated by a single TTY_OP_END (0) byte.
func encodeTerminalModes(modes cryptossh.TerminalModes) string {
	buf := make([]byte, 0, len(modes)*5+1)
	for opcode, value := range modes {
		buf = append(buf, opcode, byte(value>>24), byte(value>>16), byte(value>>8), byte(value))
	}
	buf = append(buf, 0) // TTY_OP_END
	return string(buf)
}

// inputPump consumes byte slices from the input queue and writes them to the
// channel. Any timeout or I/O error sets is_closed and exits (§4.2).
func (s *PtySession) inputPump() {
	defer close(s.inputDone)
	for {
		select {
		case <-s.stopCh:
			return
		case data := <-s.input:
			if !s.writeWithTimeout(data) {
				s.markClosed()
				return
			}
		}
	}
}

func (s *PtySession) writeWithTimeout(data []byte) bool {
	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		_, err := s.channel.Write(data)
		done <- result{err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			return false
		}
	case <-time.After(writeTimeout):
		return false
	}
	return s.flushWithTimeout()
}

func (s *PtySession) flushWithTimeout() bool {
	// golang.org/x/crypto/ssh.Channel has no explicit Flush; Write already
	// sends data immediately over the channel. We still honor the 1s flush
	// budget described in §4.2/§5 for symmetry with callers expecting a
	// bounded write+flush operation.
	done := make(chan struct{}, 1)
	go func() { done <- struct{}{} }()
	select {
	case <-done:
		return true
	case <-time.After(flushTimeout):
		return false
	}
}

// outputPump waits for channel messages with a 100ms polling timeout so
// is_closed is observed promptly. Data/ExtendedData go to the output queue;
// Eof/Close end the task (§4.2). Extended data (the channel's stderr stream)
// is forwarded by a separate goroutine that ends when that stream does.
func (s *PtySession) outputPump() {
	defer close(s.outputDone)
	if stderr := s.channel.Stderr(); stderr != nil {
		go func() {
			ebuf := make([]byte, 32*1024)
			for {
				n, err := stderr.Read(ebuf)
				if n > 0 {
					chunk := make([]byte, n)
					copy(chunk, ebuf[:n])
					if !s.sendOutput(chunk) {
						return
					}
				}
				if err != nil {
					return
				}
			}
		}()
	}
	buf := make([]byte, 32*1024)
	for {
		if s.closed.Load() {
			return
		}

		type readResult struct {
			n   int
			err error
		}
		done := make(chan readResult, 1)
		go func() {
			n, err := s.channel.Read(buf)
			done <- readResult{n, err}
		}()

		select {
		case r := <-done:
			if r.n > 0 {
				chunk := make([]byte, r.n)
				copy(chunk, buf[:r.n])
				if !s.sendOutput(chunk) {
					s.markClosed()
					return
				}
			}
			if r.err != nil {
				s.markClosed()
				return
			}
		case <-time.After(outputPollTimeout):
			// loop back around to re-check is_closed
		}
	}
}

func (s *PtySession) sendOutput(chunk []byte) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.output <- chunk:
		return true
	case <-time.After(outputSendTimeout):
		return false
	}
}

// Write enqueues bytes for delivery to the remote shell. Empty writes are a
// no-op; writes over 1 MiB are rejected; writes to a closed session are
// rejected (§4.2, §8 property 5).
func (s *PtySession) Write(data []byte) error {
	if s.closed.Load() {
		return errPtyClosed()
	}
	if len(data) == 0 {
		return nil
	}
	if len(data) > maxPayloadBytes {
		return errPayloadTooLarge(len(data))
	}

	select {
	case s.input <- data:
		return nil
	default:
	}

	// Queue was full: fall back to a bounded blocking enqueue.
	select {
	case s.input <- data:
		return nil
	case <-time.After(writeTimeout):
		if s.closed.Load() {
			return errPtyClosed()
		}
		return newErr(KindTransportError, "timed out enqueuing pty input", nil)
	}
}

// Read dequeues output bytes, waiting up to timeout for data to arrive.
// Returns (nil, nil) on timeout — the sentinel for "no data yet" — and
// *Error{Kind: KindPtyClosed} once the session has been torn down and has no
// buffered output left (§4.2).
func (s *PtySession) Read(timeout time.Duration) ([]byte, error) {
	select {
	case data, ok := <-s.output:
		if !ok {
			return nil, errPtyClosed()
		}
		return data, nil
	default:
	}

	select {
	case data, ok := <-s.output:
		if !ok {
			return nil, errPtyClosed()
		}
		return data, nil
	case <-time.After(timeout):
		if s.closed.Load() {
			return nil, errPtyClosed()
		}
		return nil, nil
	}
}

// UpdateSize validates and stores the new terminal dimensions. Per
// SPEC_FULL.md §9 (open question carried from spec.md), this does not
// propagate into the channel — the remote PTY keeps its original size until
// resize support is wired.
func (s *PtySession) UpdateSize(cols, rows int) error {
	if err := validateSize(cols, rows); err != nil {
		return err
	}
	s.sizeMu.Lock()
	s.cols, s.rows = cols, rows
	s.sizeMu.Unlock()
	return nil
}

// Size returns the last validated terminal dimensions.
func (s *PtySession) Size() (cols, rows int) {
	s.sizeMu.RLock()
	defer s.sizeMu.RUnlock()
	return s.cols, s.rows
}

// markClosed performs the compare-and-set close described in §4.2's state
// machine, without waiting for the pumps to exit (used internally by the
// pumps themselves on I/O failure).
func (s *PtySession) markClosed() {
	if s.closed.CompareAndSwap(false, true) {
		s.channel.Close()
		close(s.stopCh)
	}
}

// Close is idempotent: it sets is_closed, aborts both pumps, and awaits each
// up to 2s (§4.2).
func (s *PtySession) Close() error {
	s.closeOnce.Do(func() {
		s.markClosed()
		waitWithTimeout(s.inputDone, closeJoinTimeout)
		waitWithTimeout(s.outputDone, closeJoinTimeout)
	})
	return nil
}

func waitWithTimeout(done <-chan struct{}, timeout time.Duration) {
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// IsClosed reports whether the session has transitioned to Closing/Closed.
func (s *PtySession) IsClosed() bool { return s.closed.Load() }
