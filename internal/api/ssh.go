package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/websoft9/sshbridge/internal/audit"
	"github.com/websoft9/sshbridge/internal/sshx"
)

// connectRequest is the wire shape for ssh_connect. It mirrors sshx.Config
// field-for-field but carries JSON tags and the session id, which does not
// belong on the immutable connection spec itself.
type connectRequest struct {
	SessionID    string             `json:"session_id"`
	Host         string             `json:"host"`
	Port         int                `json:"port"`
	Username     string             `json:"username"`
	AuthMethod   string             `json:"auth_method"`
	Password     string             `json:"password,omitempty"`
	KeyPath      string             `json:"key_path,omitempty"`
	Passphrase   string             `json:"passphrase,omitempty"`
	ForwardPorts []sshx.ForwardPort `json:"forward_ports,omitempty"`
}

// SshConnect handles POST /api/v1/ssh_connect.
func (a *API) SshConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	if _, err := uuid.Parse(req.SessionID); err != nil {
		writeErr(w, sshx.NewProtocolError("session_id must be a UUID string"))
		return
	}

	cfg := sshx.Config{
		Host:         req.Host,
		Port:         req.Port,
		Username:     req.Username,
		AuthType:     sshx.AuthType(req.AuthMethod),
		Password:     req.Password,
		KeyPath:      req.KeyPath,
		Passphrase:   req.Passphrase,
		ForwardPorts: req.ForwardPorts,
	}

	_, err := a.Manager.CreateSession(r.Context(), req.SessionID, cfg)
	if err != nil {
		a.auditEvent(r, "ssh.connect", "session", req.SessionID, audit.StatusFailed, map[string]any{"error": err.Error()})
		writeErr(w, err)
		return
	}

	a.auditEvent(r, "ssh.connect", "session", req.SessionID, audit.StatusSuccess, map[string]any{"host": req.Host})
	writeOK(w, map[string]any{"session_id": req.SessionID})
}

type sessionIDRequest struct {
	SessionID string `json:"session_id"`
}

// SshCancelConnect handles POST /api/v1/ssh_cancel_connect.
func (a *API) SshCancelConnect(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	ok := a.Manager.CancelPendingConnection(req.SessionID)
	writeOK(w, map[string]any{"cancelled": ok})
}

// SshDisconnect handles POST /api/v1/ssh_disconnect.
func (a *API) SshDisconnect(w http.ResponseWriter, r *http.Request) {
	var req sessionIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}
	if err := a.Manager.CloseSession(req.SessionID); err != nil {
		writeErr(w, err)
		return
	}
	a.auditEvent(r, "ssh.disconnect", "session", req.SessionID, audit.StatusSuccess, nil)
	writeOK(w, nil)
}

// ListSessions handles GET /api/v1/list_sessions.
func (a *API) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeOK(w, a.Manager.ListSessions())
}

// interactiveCommands are flagged with a clarifying note when they fail —
// they require a real PTY, which execute_command does not provide.
var interactiveCommands = map[string]bool{
	"top": true, "htop": true, "vim": true, "vi": true, "nano": true,
	"emacs": true, "less": true, "more": true, "man": true, "tmux": true, "screen": true,
}

type executeRequest struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
}

// SshExecuteCommand handles POST /api/v1/ssh_execute_command. It rewrites
// `top`/`top …` and `htop[…]` into `top -bn1` so batch-mode output is
// produced on a channel with no real terminal, and augments failures of
// known-interactive commands with a clarifying note (§6).
func (a *API) SshExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}

	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}

	transformed := transformBatchCommand(req.Command)
	output, err := client.ExecuteCommand(transformed)
	if err != nil {
		if firstToken := firstWord(req.Command); interactiveCommands[firstToken] {
			err = augmentInteractiveError(err, firstToken)
		}
		a.auditEvent(r, "ssh.execute_command", "session", req.SessionID, audit.StatusFailed, map[string]any{"command": req.Command})
		writeErr(w, err)
		return
	}

	a.auditEvent(r, "ssh.execute_command", "session", req.SessionID, audit.StatusSuccess, map[string]any{"command": req.Command})
	writeOK(w, map[string]any{"output": output})
}

func transformBatchCommand(cmd string) string {
	trimmed := strings.TrimSpace(cmd)
	first := firstWord(trimmed)
	switch {
	case first == "top":
		return "top -bn1"
	case strings.HasPrefix(first, "htop"):
		return "top -bn1"
	default:
		return cmd
	}
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func augmentInteractiveError(err error, cmd string) error {
	var serr *sshx.Error
	if errors.As(err, &serr) {
		return &sshx.Error{
			Kind:    serr.Kind,
			Message: serr.Message + " (interactive commands like '" + cmd + "' are not supported on this channel)",
			Code:    serr.Code,
			Cause:   serr.Cause,
		}
	}
	return err
}

// SshTabComplete handles POST /api/v1/ssh_tab_complete.
func (a *API) SshTabComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID      string `json:"session_id"`
		Input          string `json:"input"`
		CursorPosition int    `json:"cursor_position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, sshx.NewProtocolError("malformed request body"))
		return
	}

	client := a.Manager.GetSession(req.SessionID)
	if client == nil {
		writeErr(w, sshx.ErrSessionNotFound(req.SessionID))
		return
	}

	pos := req.CursorPosition
	if pos > len(req.Input) {
		pos = len(req.Input)
	}
	if pos < 0 {
		pos = 0
	}
	upToCursor := req.Input[:pos]

	token, isFirstToken := lastToken(upToCursor)

	var cmd string
	if isFirstToken {
		cmd = "compgen -c " + shellQuote(token)
	} else {
		cmd = "compgen -f " + shellQuote(token) + " || ls -1ap"
	}

	raw, err := client.ExecuteCommand(cmd)
	if err != nil {
		writeErr(w, err)
		return
	}

	completions := filterAndSortCompletions(raw, token, 50)
	commonPrefix := computeCommonPrefix(completions, token)

	writeOK(w, map[string]any{
		"completions":   completions,
		"common_prefix": commonPrefix,
	})
}

// lastToken extracts the last whitespace-delimited token up to the cursor
// and reports whether it is the first token on the line (affects which
// compgen mode is used).
func lastToken(upToCursor string) (token string, isFirst bool) {
	fields := strings.Fields(upToCursor)
	if len(fields) == 0 {
		return "", true
	}
	last := fields[len(fields)-1]
	if !strings.HasSuffix(upToCursor, last) {
		// cursor sits right after trailing whitespace: starting a new token
		return "", false
	}
	return last, len(fields) == 1
}

func filterAndSortCompletions(raw, token string, limit int) []string {
	lines := strings.Split(raw, "\n")
	seen := make(map[string]bool, len(lines))
	var out []string
	for _, line := range lines {
		c := strings.TrimSpace(line)
		if c == "" || !strings.HasPrefix(c, token) || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	sort.Strings(out)
	return out
}

func computeCommonPrefix(completions []string, token string) *string {
	if len(completions) <= 1 {
		return nil
	}
	prefix := completions[0]
	for _, c := range completions[1:] {
		for !strings.HasPrefix(c, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return nil
			}
		}
	}
	if prefix == completions[0] && len(completions) == 1 {
		return nil
	}
	return &prefix
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
