package services

import (
	"log"
	"sync"
	"time"

	"officehourlens/internal/models"
)

// QueueHub fans queue events out to connected TA dashboards. Each websocket
// connection subscribes for a buffered channel; slow consumers drop events
// rather than blocking queue mutations.
type QueueHub struct {
	subscribers map[string]chan models.QueueEvent
	mutex       sync.RWMutex
}

// NewQueueHub creates a new queue event hub
func NewQueueHub() *QueueHub {
	return &QueueHub{
		subscribers: make(map[string]chan models.QueueEvent),
	}
}

// Subscribe registers a consumer under the given connection id
func (h *QueueHub) Subscribe(connID string) chan models.QueueEvent {
	ch := make(chan models.QueueEvent, 16)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.subscribers[connID] = ch
	log.Printf("✅ Queue subscriber added: %s (Total: %d)", connID, len(h.subscribers))
	return ch
}

// Unsubscribe removes a consumer and closes its channel
func (h *QueueHub) Unsubscribe(connID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if ch, exists := h.subscribers[connID]; exists {
		close(ch)
		delete(h.subscribers, connID)
		log.Printf("❌ Queue subscriber removed: %s (Total: %d)", connID, len(h.subscribers))
	}
}

// Count returns the number of active subscribers
func (h *QueueHub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers)
}

// Broadcast delivers an event to every subscriber without blocking
func (h *QueueHub) Broadcast(eventType models.QueueEventType, questionID int64, queueDepth int) {
	event := models.QueueEvent{
		Type:       eventType,
		QuestionID: questionID,
		QueueDepth: queueDepth,
		Timestamp:  time.Now(),
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for connID, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("⚠️  Queue subscriber %s is slow, dropping event", connID)
		}
	}
}
