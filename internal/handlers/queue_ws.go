package handlers

import (
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"officehourlens/internal/services"
)

const wsWriteTimeout = 10 * time.Second

// QueueWebSocketHandler streams queue change events to TA dashboards
type QueueWebSocketHandler struct {
	hub *services.QueueHub
}

// NewQueueWebSocketHandler creates a new queue websocket handler
func NewQueueWebSocketHandler(hub *services.QueueHub) *QueueWebSocketHandler {
	return &QueueWebSocketHandler{hub: hub}
}

// Handle handles a new websocket connection on /ws/queue. The connection is
// write-only from the server's perspective; a reader goroutine only watches
// for the client going away.
func (h *QueueWebSocketHandler) Handle(c *websocket.Conn) {
	connID := uuid.New().String()
	events := h.hub.Subscribe(connID)
	defer h.hub.Unsubscribe(connID)

	done := make(chan struct{})

	// Drain client frames to detect disconnects and answer pings
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.WriteJSON(event); err != nil {
				log.Printf("⚠️  Failed to push queue event to %s: %v", connID, err)
				return
			}
		case <-done:
			return
		}
	}
}
