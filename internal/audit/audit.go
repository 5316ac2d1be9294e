// Package audit provides a unified helper for writing operation audit
// records. Adapted from the PocketBase-backed collection writer onto a
// zerolog sink: this process has no database, so every record is emitted as
// a structured log line instead of a row.
package audit

import "github.com/rs/zerolog/log"

// Status is one of Pending, Success, or Failed.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

var validStatuses = map[Status]bool{
	StatusPending: true,
	StatusSuccess: true,
	StatusFailed:  true,
}

// Entry holds all fields for a single audit record. Using a named struct
// avoids the swap-bug risk of many consecutive string parameters.
type Entry struct {
	// Action is a dot-namespaced verb, e.g. "ssh.connect", "ssh.execute_command".
	Action string
	// ResourceType is the category of the affected resource, e.g. "session", "file".
	ResourceType string
	// ResourceID is the session identifier or remote path affected.
	ResourceID string
	// ResourceName is an optional human-readable label of the affected resource.
	ResourceName string
	// Status must be one of StatusPending, StatusSuccess, or StatusFailed.
	Status Status
	// IP is the client's source address. Always loopback for this process but
	// kept for parity with the upstream shape and future non-loopback use.
	IP string
	// UserAgent is the HTTP User-Agent header value, logged as its own
	// user_agent field when non-empty.
	UserAgent string
	// Detail holds optional structured context (error message, byte counts, etc.).
	Detail map[string]any
}

// Write emits one audit record. Errors are impossible by construction (a log
// line cannot fail the way a database write can) but an invalid Status is
// still rejected — an audit failure must never break the calling operation,
// so this never returns an error.
func Write(entry Entry) {
	if !validStatuses[entry.Status] {
		log.Warn().Str("action", entry.Action).Str("status", string(entry.Status)).
			Msg("audit.Write: invalid status — skipping")
		return
	}

	evt := log.Info()
	if entry.Status == StatusFailed {
		evt = log.Warn()
	}

	evt = evt.Str("action", entry.Action).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("status", string(entry.Status)).
		Str("ip", entry.IP)

	if entry.ResourceName != "" {
		evt = evt.Str("resource_name", entry.ResourceName)
	}
	if entry.UserAgent != "" {
		evt = evt.Str("user_agent", entry.UserAgent)
	}
	if entry.Detail != nil {
		evt = evt.Interface("detail", entry.Detail)
	}

	evt.Msg("audit")
}
