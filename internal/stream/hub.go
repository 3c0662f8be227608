// Package stream broadcasts ledger events to connected dashboard
// clients over WebSocket.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin control happens at the CORS middleware; the upgrade
	// itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the envelope every broadcast message uses.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans broadcast messages out to all connected clients. Clients
// that cannot keep up are dropped.
type Hub struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[*client]bool
	closed  bool
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		log:     logger.With().Str("component", "stream").Logger(),
		clients: make(map[*client]bool),
	}
}

// Broadcast marshals the event and queues it to every client.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal stream event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.drop(c)
		}
	}
}

// ServeHTTP upgrades the request and keeps the connection registered
// until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info().Int("clients", n).Msg("stream client connected")

	go h.writePump(c)
	h.readPump(c)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.drop(c)
	}
}

// drop removes a client. Callers must hold h.mu.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// readPump drains the connection; inbound frames are ignored, the read
// loop only detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.drop(c)
		h.mu.Unlock()
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
