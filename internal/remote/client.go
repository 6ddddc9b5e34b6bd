// ABOUTME: WebSocket client that keys a remote keytone keyer
// ABOUTME: Handles connection, handshake, and key-event sending
package remote

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/keytone/keytone-go/pkg/protocol"
)

// ClientConfig holds remote client configuration.
type ClientConfig struct {
	ServerAddr string // host:port of the keyer
	Name       string // friendly client name
}

// Client sends key transitions to a keyer over a WebSocket.
type Client struct {
	config   ClientConfig
	clientID string

	mu    sync.Mutex
	conn  *websocket.Conn
	keyer protocol.KeyerHello
}

// NewClient creates a remote keying client.
func NewClient(config ClientConfig) *Client {
	return &Client{
		config:   config,
		clientID: uuid.New().String(),
	}
}

// Connect establishes the WebSocket connection and performs the handshake.
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: "/keytone"}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	return nil
}

// handshake sends client/hello and waits for keyer/hello.
func (c *Client) handshake() error {
	hello, err := protocol.NewMessage(protocol.TypeClientHello, protocol.ClientHello{
		ClientID: c.clientID,
		Name:     c.config.Name,
		Version:  protocol.ProtocolVersion,
	})
	if err != nil {
		return err
	}
	if err := c.sendJSON(hello); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read keyer/hello: %w", err)
	}
	_ = c.conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse keyer/hello: %w", err)
	}
	if msg.Type != protocol.TypeKeyerHello {
		return fmt.Errorf("expected %s, got %s", protocol.TypeKeyerHello, msg.Type)
	}

	var keyerHello protocol.KeyerHello
	if err := msg.Decode(&keyerHello); err != nil {
		return err
	}

	c.mu.Lock()
	c.keyer = keyerHello
	c.mu.Unlock()

	log.Printf("Connected to keyer %s (%.0fHz tone)", keyerHello.Name, keyerHello.Frequency)

	return nil
}

// Keyer returns the hello received from the keyer.
func (c *Client) Keyer() protocol.KeyerHello {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyer
}

// SendKeyDown reports a trigger key press to the keyer.
func (c *Client) SendKeyDown(key string) error {
	return c.sendKeyEvent(protocol.TypeKeyDown, key)
}

// SendKeyUp reports a trigger key release to the keyer.
func (c *Client) SendKeyUp(key string) error {
	return c.sendKeyEvent(protocol.TypeKeyUp, key)
}

func (c *Client) sendKeyEvent(msgType, key string) error {
	msg, err := protocol.NewMessage(msgType, protocol.KeyEvent{Key: key})
	if err != nil {
		return err
	}
	return c.sendJSON(msg)
}

func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(msg)
}

// Close closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
