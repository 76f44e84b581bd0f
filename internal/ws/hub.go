// Package ws fans server events out to connected WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go-insumos-ws/internal/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent to clients.
const (
	EventStockUpdate   = "stock_update"
	EventOrderStatus   = "order_status"
	EventRecipeUpdated = "recipe_updated"
	EventUserStatus    = "user_status_update"
)

// Event is the JSON frame every client receives.
type Event struct {
	Type    string       `json:"type"`
	Action  string       `json:"action,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	User    *model.Actor `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Client is the part of a connection the hub writes to. *websocket.Conn satisfies it.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const broadcastBuffer = 256

type Hub struct {
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte

	mutex   sync.Mutex
	clients map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, broadcastBuffer),
		clients:    make(map[Client]struct{}),
	}
}

// Publish queues e for every client. It never blocks; when the queue is full the
// event is dropped and logged.
func (h *Hub) Publish(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("type", e.Type).Msg("ws: marshal event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		log.Warn().Str("type", e.Type).Msg("ws: broadcast queue full, event dropped")
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.Register:
			h.mutex.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mutex.Unlock()
			log.Debug().Int("clients", n).Msg("ws: client connected")

		case c := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.Broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Debug().Err(err).Msg("ws: dropping client")
					c.Close()
					delete(h.clients, c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Serve is the per-connection handler mounted on /ws.
func (h *Hub) Serve(c *websocket.Conn) {
	h.Register <- c
	defer func() { h.Unregister <- c }()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
