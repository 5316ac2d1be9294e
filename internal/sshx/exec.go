package sshx

import (
	"bytes"

	cryptossh "golang.org/x/crypto/ssh"
)

// ExecuteCommand opens a fresh session channel, runs cmd, and returns the
// concatenated stdout+stderr as a UTF-8 (lossy) string. Safe to call
// concurrently on the same client: each call opens its own channel and only
// takes a read lock on the transport (§4.1, §5 "Concurrency of
// execute_command").
//
// Success criteria: exit 0 ⇒ ok; no exit status but non-empty output ⇒ ok
// (some servers close without sending one — see SPEC_FULL.md §9 open
// question); anything else ⇒ *Error{Kind: KindCommandFailed}.
func (c *Client) ExecuteCommand(cmd string) (string, error) {
	transport := c.Transport()
	if transport == nil {
		return "", errNotConnected("ssh client is not connected")
	}

	session, err := transport.NewSession()
	if err != nil {
		return "", errTransport("open session channel", err)
	}
	defer session.Close()

	var out bytes.Buffer
	session.Stdout = &out
	session.Stderr = &out

	runErr := session.Run(cmd)
	output := out.String()

	if runErr == nil {
		return output, nil
	}

	if exitErr, ok := runErr.(*cryptossh.ExitError); ok {
		code := exitErr.ExitStatus()
		if code == 0 {
			return output, nil
		}
		return output, errCommandFailed(code)
	}

	if runErr == cryptossh.ErrSSHValueTooLong {
		return output, errTransport("command output exceeded limits", runErr)
	}

	// No explicit exit status (ExitMissingError or channel closed without
	// one): treat non-empty output as success, matching the servers that
	// close the channel without ever sending an exit-status message.
	if output != "" {
		return output, nil
	}

	return output, errTransport("command execution failed", runErr)
}
