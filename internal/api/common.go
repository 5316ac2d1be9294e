// Package api implements the Upstream API of §6: one HTTP handler per
// operation, each talking to the shared session.Manager and never touching
// the SSH layer directly — mirroring the teacher's routes-depend-on-
// business-logic layering in internal/routes/terminal.go.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/websoft9/sshbridge/internal/audit"
	"github.com/websoft9/sshbridge/internal/session"
	"github.com/websoft9/sshbridge/internal/sshx"
)

// envelope is the `{success, data?, error?}` response shape every endpoint
// returns (§7).
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// API bundles the dependencies every handler needs.
type API struct {
	Manager *session.Manager
	Log     zerolog.Logger
}

// New constructs an API handler bundle.
func New(manager *session.Manager, log zerolog.Logger) *API {
	return &API{Manager: manager, Log: log.With().Str("component", "api").Logger()}
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// writeErr flattens any error into {success:false, error: message}. A
// *sshx.Error contributes only its Message (its Cause is not sent); any
// other error is sent as its err.Error() text (§7).
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	var serr *sshx.Error
	if errors.As(err, &serr) {
		msg = serr.Message
		switch serr.Kind {
		case sshx.KindSessionNotFound, sshx.KindPtyNotFound:
			status = http.StatusNotFound
		case sshx.KindAuthFailed, sshx.KindBadTerminalSize, sshx.KindPayloadTooLarge, sshx.KindProtocolError:
			status = http.StatusBadRequest
		case sshx.KindCancelled:
			status = http.StatusOK // §8 S2: cancellation is reported, not a server fault
		}
	}

	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// auditEvent records an audit entry without failing the calling handler —
// audit.Write already swallows its own errors, this just centralizes the
// IP/user-agent extraction from the request.
func (a *API) auditEvent(r *http.Request, action, resourceType, resourceID string, status audit.Status, detail map[string]any) {
	audit.Write(audit.Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       status,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
		Detail:       detail,
	})
}
