package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client is one connected renderer/controller. Seat is the player seat
// this connection controls; -1 for a view-only spectator.
type Client struct {
	conn       *websocket.Conn
	matchToken string
	seat       int
	send       chan []byte
}

// Hub maintains the set of active clients grouped by match.
type Hub struct {
	rooms      map[string]map[*Client]struct{} // match token -> clients
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client registration until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.matchToken]; !ok {
				h.rooms[client.matchToken] = make(map[*Client]struct{})
			}
			h.rooms[client.matchToken][client] = struct{}{}
			h.mu.Unlock()
			log.Printf("[WS] client joined match token=%s seat=%d", shortToken(client.matchToken), client.seat)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.matchToken]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.matchToken)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] client left match token=%s seat=%d", shortToken(client.matchToken), client.seat)
		}
	}
}

// BroadcastToMatch sends a message to every client watching a match.
func (h *Hub) BroadcastToMatch(matchToken string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[matchToken] {
		select {
		case client.send <- data:
		default:
			// Client's buffer is full; drop rather than stall the frame loop.
			log.Printf("[WS] send buffer full for seat %d in match %s, dropping message", client.seat, shortToken(matchToken))
		}
	}
}

// HasClients reports whether anyone is watching a match.
func (h *Hub) HasClients(matchToken string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchToken]) > 0
}

// WSMessage is the envelope for inbound client messages.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes outbound messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}

func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
