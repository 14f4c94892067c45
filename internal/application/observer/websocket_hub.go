package observer

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/smilemakc/mbflow/internal/infrastructure/logger"
)

// WebSocketHub tracks connected WebSocket clients and fans out broadcast
// messages to them, optionally scoped to a single execution.
type WebSocketHub struct {
	clients    map[*WebSocketClient]bool
	broadcast  chan []byte
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	logger     *logger.Logger

	mu sync.RWMutex
}

// NewWebSocketHub creates a hub and starts its event loop in the background.
func NewWebSocketHub(log *logger.Logger) *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		logger:     log,
	}
	go hub.run()
	return hub
}

func (h *WebSocketHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", "client_id", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("websocket client unregistered", "client_id", client.ID)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub.
func (h *WebSocketHub) Register(client *WebSocketClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WebSocketHub) Unregister(client *WebSocketClient) {
	h.unregister <- client
}

// Broadcast sends message to every connected client.
func (h *WebSocketHub) Broadcast(message []byte) {
	h.broadcast <- message
}

// BroadcastToExecution sends message to clients subscribed to executionID, and
// to clients with no execution filter (subscribed to everything).
func (h *WebSocketHub) BroadcastToExecution(executionID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.executionID != "" && client.executionID != executionID {
			continue
		}
		select {
		case client.send <- message:
		default:
		}
	}
}

// ClientCount returns the number of currently registered clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WebSocketClient wraps a single WebSocket connection and its subscriptions.
type WebSocketClient struct {
	ID            string
	conn          *websocket.Conn
	send          chan []byte
	hub           *WebSocketHub
	executionID   string
	subscriptions map[EventType]bool

	mu sync.RWMutex
}

// NewWebSocketClient creates a client bound to conn, optionally scoped to executionID.
func NewWebSocketClient(id string, conn *websocket.Conn, hub *WebSocketHub, executionID string) *WebSocketClient {
	return &WebSocketClient{
		ID:            id,
		conn:          conn,
		send:          make(chan []byte, 256),
		hub:           hub,
		executionID:   executionID,
		subscriptions: make(map[EventType]bool),
	}
}

// IsSubscribed reports whether the client wants events of the given type. A
// client with no explicit subscriptions receives every event type.
func (c *WebSocketClient) IsSubscribed(eventType EventType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.subscriptions) == 0 {
		return true
	}
	return c.subscriptions[eventType]
}

type wsClientCommand struct {
	Command    string   `json:"command"`
	EventTypes []string `json:"event_types"`
}

// handleMessage processes an inbound subscribe/unsubscribe control message
// from the client. Malformed or unknown messages are ignored.
func (c *WebSocketClient) handleMessage(data []byte) {
	var cmd wsClientCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd.Command {
	case "subscribe":
		for _, t := range cmd.EventTypes {
			c.subscriptions[EventType(t)] = true
		}
	case "unsubscribe":
		for _, t := range cmd.EventTypes {
			delete(c.subscriptions, EventType(t))
		}
	}
}
