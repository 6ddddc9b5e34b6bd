// ABOUTME: WebSocket server accepting remote key events
// ABOUTME: Manages client connections and forwards key transitions to the keyer
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/keytone/keytone-go/pkg/protocol"
)

// KeySink receives key transitions from remote clients.
type KeySink interface {
	KeyDown(key string)
	KeyUp(key string)
}

// Config holds server configuration.
type Config struct {
	Port       int
	Name       string
	Frequency  float64
	SampleRate int

	// OnClients, if set, is called with the client count after every
	// connect and disconnect.
	OnClients func(n int)
}

// Server accepts WebSocket connections from remote key clients and
// translates their key/down and key/up messages into sink calls.
type Server struct {
	config  Config
	keyerID string
	sink    KeySink

	upgrader   websocket.Upgrader
	httpServer *http.Server

	clients   map[string]*session
	clientsMu sync.Mutex

	stopOnce sync.Once
}

// session is one connected remote key source.
type session struct {
	id   string
	name string
	conn *websocket.Conn
	held map[string]struct{} // keys this client currently holds down
}

// NewServer creates a remote keying server feeding sink.
func NewServer(config Config, sink KeySink) *Server {
	return &Server{
		config:  config,
		keyerID: uuid.New().String(),
		sink:    sink,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*session),
	}
}

// Start begins listening for remote clients.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/keytone", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: mux,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("Remote keying server error: %v", err)
		}
	}()

	log.Printf("Remote keying server listening on port %d", s.config.Port)

	return nil
}

// Stop shuts the server down and disconnects all clients.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.clientsMu.Lock()
		for _, c := range s.clients {
			_ = c.conn.Close()
		}
		s.clientsMu.Unlock()

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("Remote keying server shutdown error: %v", err)
			}
		}
	})
}

// ClientCount returns the number of connected remote clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// handleWebSocket upgrades a connection and runs its message loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c, err := s.handshake(conn)
	if err != nil {
		log.Printf("Remote client handshake failed: %v", err)
		_ = conn.Close()
		return
	}

	s.register(c)
	log.Printf("Remote client connected: %s (%s)", c.name, c.id)

	s.readLoop(c)

	s.unregister(c)
	_ = conn.Close()
	log.Printf("Remote client disconnected: %s (%s)", c.name, c.id)
}

// handshake reads client/hello and answers keyer/hello.
func (s *Server) handshake(conn *websocket.Conn) (*session, error) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read client/hello: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client/hello: %w", err)
	}
	if msg.Type != protocol.TypeClientHello {
		return nil, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, msg.Type)
	}

	var hello protocol.ClientHello
	if err := msg.Decode(&hello); err != nil {
		return nil, err
	}
	if hello.ClientID == "" {
		hello.ClientID = uuid.New().String()
	}

	reply, err := protocol.NewMessage(protocol.TypeKeyerHello, protocol.KeyerHello{
		KeyerID:    s.keyerID,
		Name:       s.config.Name,
		Version:    protocol.ProtocolVersion,
		Frequency:  s.config.Frequency,
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(reply); err != nil {
		return nil, fmt.Errorf("failed to send keyer/hello: %w", err)
	}

	return &session{
		id:   hello.ClientID,
		name: hello.Name,
		conn: conn,
		held: make(map[string]struct{}),
	}, nil
}

// readLoop processes key events until the connection drops.
func (s *Server) readLoop(c *session) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ignoring malformed message from %s: %v", c.id, err)
			continue
		}

		switch msg.Type {
		case protocol.TypeKeyDown, protocol.TypeKeyUp:
			var ev protocol.KeyEvent
			if err := msg.Decode(&ev); err != nil {
				log.Printf("Ignoring malformed key event from %s: %v", c.id, err)
				continue
			}
			if msg.Type == protocol.TypeKeyDown {
				c.held[ev.Key] = struct{}{}
				s.sink.KeyDown(ev.Key)
			} else {
				delete(c.held, ev.Key)
				s.sink.KeyUp(ev.Key)
			}
		default:
			log.Printf("Ignoring unknown message type %q from %s", msg.Type, c.id)
		}
	}
}

func (s *Server) register(c *session) {
	s.clientsMu.Lock()
	s.clients[c.id] = c
	n := len(s.clients)
	s.clientsMu.Unlock()

	if s.config.OnClients != nil {
		s.config.OnClients(n)
	}
}

// unregister removes a client and releases any keys it still held, so a
// dropped connection can never latch the tone on.
func (s *Server) unregister(c *session) {
	s.clientsMu.Lock()
	delete(s.clients, c.id)
	n := len(s.clients)
	s.clientsMu.Unlock()

	for key := range c.held {
		s.sink.KeyUp(key)
	}

	if s.config.OnClients != nil {
		s.config.OnClients(n)
	}
}
