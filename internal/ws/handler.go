package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is checked by middleware.WebSocketCORSCheck
	},
}

// Client represents a connected WebSocket viewer of one session
type Client struct {
	conn         *websocket.Conn
	id           string
	sessionToken string
	canControl   bool
	send         chan []byte
}

// Hub maintains the set of active clients grouped by session
type Hub struct {
	clients    map[string]*Client            // clientID -> Client
	rooms      map[string]map[string]*Client // sessionToken -> clientID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.id] = client
	if _, exists := h.rooms[client.sessionToken]; !exists {
		h.rooms[client.sessionToken] = make(map[string]*Client)
	}
	h.rooms[client.sessionToken][client.id] = client
	log.Printf("[WS] Client %s joined session %s (control=%t, room_size=%d)",
		client.id, client.sessionToken, client.canControl, len(h.rooms[client.sessionToken]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur, ok := h.clients[client.id]
	if !ok || cur != client {
		return
	}
	delete(h.clients, client.id)
	if room, exists := h.rooms[client.sessionToken]; exists {
		delete(room, client.id)
		if len(room) == 0 {
			delete(h.rooms, client.sessionToken)
		}
	}
	close(client.send)
	log.Printf("[WS] Client %s left session %s", client.id, client.sessionToken)
}

// RoomSize returns the number of clients watching a session
func (h *Hub) RoomSize(sessionToken string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionToken])
}

// BroadcastToSession sends a message to every client watching a session.
// Slow clients drop the message rather than stall the frame loop.
func (h *Hub) BroadcastToSession(sessionToken string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	h.broadcastRaw(sessionToken, data)
}

func (h *Hub) broadcastRaw(sessionToken string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[sessionToken] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for client %s in session %s, dropping message", client.id, sessionToken)
		}
	}
}

// sendToClient queues a message for one client
func (h *Hub) sendToClient(client *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if cur, ok := h.clients[client.id]; !ok || cur != client {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Printf("[WS] sendToClient dropped message for client %s (buffer full)", client.id)
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}
