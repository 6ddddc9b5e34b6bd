// ABOUTME: Package documentation for the remote-keying protocol
// ABOUTME: Describes the handshake and key-event message flow

// Package protocol defines the JSON messages exchanged between a keytone
// keyer and a remote key client over a WebSocket.
//
// The flow is a single handshake followed by a one-way event stream: the
// client sends client/hello, the keyer answers keyer/hello, and from then
// on the client sends key/down and key/up messages as its trigger keys
// transition. The keyer never pushes audio back; the tone plays on the
// keyer's own output device.
package protocol
