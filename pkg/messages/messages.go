package messages

import (
	"encoding/json"
	"fmt"
)

// Message types
const (
	MessageTypeStatus  = "status"
	MessageTypeEvents  = "events"
	MessageTypeSession = "session"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
)

// Message is a typed envelope pushed to stream subscribers.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New wraps payload in a message of type t.
func New(t string, payload interface{}) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", t, err)
	}
	return &Message{Type: t, Payload: b}, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", m.Type, err)
	}
	return nil
}
