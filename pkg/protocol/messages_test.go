// ABOUTME: Tests for protocol message encoding and decoding
// ABOUTME: Verifies wire format of hello and key-event messages
package protocol

import (
	"encoding/json"
	"testing"
)

func TestKeyEventRoundTrip(t *testing.T) {
	msg, err := NewMessage(TypeKeyDown, KeyEvent{Key: "space"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != TypeKeyDown {
		t.Errorf("type = %q, want %q", got.Type, TypeKeyDown)
	}

	var ev KeyEvent
	if err := got.Decode(&ev); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if ev.Key != "space" {
		t.Errorf("key = %q, want %q", ev.Key, "space")
	}
}

func TestKeyerHelloWireFormat(t *testing.T) {
	msg, err := NewMessage(TypeKeyerHello, KeyerHello{
		KeyerID:    "abc-123",
		Name:       "bench-keyer",
		Version:    ProtocolVersion,
		Frequency:  700,
		SampleRate: 48000,
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Field names are part of the wire contract.
	var raw struct {
		Type    string `json:"type"`
		Payload struct {
			KeyerID    string  `json:"keyer_id"`
			Frequency  float64 `json:"frequency"`
			SampleRate int     `json:"sample_rate"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw.Type != TypeKeyerHello {
		t.Errorf("type = %q, want %q", raw.Type, TypeKeyerHello)
	}
	if raw.Payload.KeyerID != "abc-123" {
		t.Errorf("keyer_id = %q, want %q", raw.Payload.KeyerID, "abc-123")
	}
	if raw.Payload.Frequency != 700 || raw.Payload.SampleRate != 48000 {
		t.Errorf("tone description = %g/%d, want 700/48000",
			raw.Payload.Frequency, raw.Payload.SampleRate)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	msg := Message{Type: TypeKeyDown, Payload: json.RawMessage(`{"key":`)}

	var ev KeyEvent
	if err := msg.Decode(&ev); err == nil {
		t.Error("expected error decoding malformed payload")
	}
}
