package ws

import (
	"encoding/json"

	"github.com/vanerueda/packsim/core/sim"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

// ResetPayload selects a simulation case and restarts the run.
type ResetPayload struct {
	Case int `json:"case"`
}

// Server -> Client messages

// ErrorPayload reports a rejected client request.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SnapshotMessage encodes a snapshot envelope for broadcasting.
func SnapshotMessage(s sim.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: "snapshot", Payload: payload})
}

func errorMessage(msg string) []byte {
	payload, _ := json.Marshal(ErrorPayload{Message: msg})
	b, _ := json.Marshal(Envelope{Type: "error", Payload: payload})
	return b
}
