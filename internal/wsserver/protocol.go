package wsserver

import (
	"encoding/json"
)

// opcodeInput is the only binary opcode currently defined (§4.3).
const opcodeInput byte = 0x00

// sessionIDLen is the fixed wire width of a session identifier on the binary
// hot path. Chosen to match UUID-v4's string length exactly; do not
// generalize to variable-length identifiers without a length prefix — a
// silent mis-parse would stream one session's keystrokes into another's PTY
// (§9).
const sessionIDLen = 36

// minBinaryFrameLen is opcode(1) + session id(36); shorter frames are
// dropped with a warning.
const minBinaryFrameLen = 1 + sessionIDLen

// controlType discriminates the JSON control frames exchanged over the text
// side of the socket (§4.3, §6).
type controlType string

const (
	ctrlStartPty controlType = "StartPty"
	ctrlInput    controlType = "Input"
	ctrlOutput   controlType = "Output"
	ctrlResize   controlType = "Resize"
	ctrlPause    controlType = "Pause"
	ctrlResume   controlType = "Resume"
	ctrlClose    controlType = "Close"
	ctrlError    controlType = "Error"
	ctrlSuccess  controlType = "Success"
)

// controlFrame is the envelope for every JSON control message; only the
// fields relevant to Type are populated by the sender.
type controlFrame struct {
	Type      controlType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Cols      int         `json:"cols,omitempty"`
	Rows      int         `json:"rows,omitempty"`
	Data      byteArray   `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// byteArray carries PTY bytes over the control channel as a JSON array of
// byte values (e.g. [10,20,30]), matching the original Rust server's
// serde_json encoding of Vec<u8> and spec §6's data:[u8] wire contract.
// encoding/json's default []byte handling (a base64 string) would break
// any client written against that contract.
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*b = out
	return nil
}
