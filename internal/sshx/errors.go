package sshx

import "fmt"

// Kind enumerates the structured error categories the SSH layer returns.
// The HTTP layer (internal/api) flattens these into {success:false, error}
// without ever leaking a raw Go error string across the process boundary.
type Kind string

const (
	KindCancelled           Kind = "cancelled"
	KindAuthFailed          Kind = "auth_failed"
	KindKeyNotFound         Kind = "key_not_found"
	KindKeyDecrypt          Kind = "key_decrypt"
	KindTransportError      Kind = "transport_error"
	KindNotConnected        Kind = "not_connected"
	KindSessionNotFound     Kind = "session_not_found"
	KindPtyClosed           Kind = "pty_closed"
	KindPtyNotFound         Kind = "pty_not_found"
	KindBadTerminalSize     Kind = "bad_terminal_size"
	KindPayloadTooLarge     Kind = "payload_too_large"
	KindChannelSetupTimeout Kind = "channel_setup_timeout"
	KindCommandFailed       Kind = "command_failed"
	KindBindFailed          Kind = "bind_failed"
	KindProtocolError       Kind = "protocol_error"
)

// Error is the structured error type returned by every sshx operation.
type Error struct {
	Kind    Kind
	Message string
	Code    int // populated for KindCommandFailed: the observed exit code
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// newErr builds an *Error. Error has no Is method; callers check for a kind
// with errors.As plus a Kind comparison:
//
//	var serr *sshx.Error
//	if errors.As(err, &serr) && serr.Kind == sshx.KindPtyClosed { ... }
func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func errCancelled(msg string) *Error       { return newErr(KindCancelled, msg, nil) }
func errAuthFailed(msg string, c error) *Error  { return newErr(KindAuthFailed, msg, c) }
func errKeyNotFound(path string) *Error {
	return newErr(KindKeyNotFound, fmt.Sprintf("private key not found: %s", path), nil)
}
func errKeyDecrypt(msg string, c error) *Error { return newErr(KindKeyDecrypt, msg, c) }
func errTransport(msg string, c error) *Error  { return newErr(KindTransportError, msg, c) }
func errNotConnected(msg string) *Error        { return newErr(KindNotConnected, msg, nil) }
func errPtyClosed() *Error                     { return newErr(KindPtyClosed, "pty session is closed", nil) }
func errPtyNotFound() *Error                   { return newErr(KindPtyNotFound, "pty session not found", nil) }

// ErrSessionNotFound and ErrPtyNotFound are the session-manager-facing
// constructors: unlike their package-private counterparts above they carry
// the session id so the HTTP/WS layers can log which session was missing.
func ErrSessionNotFound(id string) *Error {
	return newErr(KindSessionNotFound, fmt.Sprintf("ssh session %q not found", id), nil)
}
func ErrPtyNotFound(id string) *Error {
	return newErr(KindPtyNotFound, fmt.Sprintf("pty session %q not found", id), nil)
}
func errBadTerminalSize(cols, rows int) *Error {
	return newErr(KindBadTerminalSize, fmt.Sprintf("terminal size %dx%d out of range [1,1000]", cols, rows), nil)
}
func errPayloadTooLarge(n int) *Error {
	return newErr(KindPayloadTooLarge, fmt.Sprintf("payload of %d bytes exceeds 1 MiB limit", n), nil)
}
func errChannelSetupTimeout(stage string) *Error {
	return newErr(KindChannelSetupTimeout, fmt.Sprintf("timed out setting up %s", stage), nil)
}
func errCommandFailed(code int) *Error {
	return &Error{Kind: KindCommandFailed, Message: fmt.Sprintf("command exited with code %d", code), Code: code}
}
func errBindFailed(addr string, c error) *Error {
	return newErr(KindBindFailed, fmt.Sprintf("bind %s", addr), c)
}

// NewProtocolError wraps a malformed-frame condition observed by the
// WebSocket layer in the same structured Error type used throughout sshx.
func NewProtocolError(msg string) *Error { return newErr(KindProtocolError, msg, nil) }

// NewCancelledError is the session-manager-facing constructor for a connect
// attempt that was abandoned before it reached the SSH transport: the
// caller's context ended while it waited on the connect rate limiter. A
// cancellation via ssh_cancel_connect during the dial is reported by Connect
// itself.
func NewCancelledError(msg string) *Error { return newErr(KindCancelled, msg, nil) }
