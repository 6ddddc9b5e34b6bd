// ABOUTME: Message type definitions for the keytone remote-keying protocol
// ABOUTME: JSON messages carried over the WebSocket between key client and keyer
package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the current remote-keying protocol version.
const ProtocolVersion = 1

// Message types.
const (
	TypeClientHello = "client/hello"
	TypeKeyerHello  = "keyer/hello"
	TypeKeyDown     = "key/down"
	TypeKeyUp       = "key/up"
)

// Message is the top-level wrapper for all protocol messages. The payload
// stays raw on the receive side so it can be decoded per type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage wraps a payload in a Message of the given type.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	return Message{Type: msgType, Payload: data}, nil
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Type, err)
	}
	return nil
}

// ClientHello is sent by a remote key client to initiate the handshake.
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// KeyerHello is the keyer's response, describing the tone it generates.
type KeyerHello struct {
	KeyerID    string  `json:"keyer_id"`
	Name       string  `json:"name"`
	Version    int     `json:"version"`
	Frequency  float64 `json:"frequency"`
	SampleRate int     `json:"sample_rate"`
}

// KeyEvent is the payload of key/down and key/up messages.
type KeyEvent struct {
	Key string `json:"key"`
}
