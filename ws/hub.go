package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub tracks which users currently hold an open websocket. Presence
// is in-memory only: rebuilt from connects and disconnects, lost on
// restart. Message durability never depends on it.
type Hub struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run processes register/unregister events. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			// a reconnect replaces the old connection
			if old, ok := h.clients[client.UserID]; ok {
				close(old.Send)
			}
			h.clients[client.UserID] = client
			h.mutex.Unlock()
			log.Printf("User %s connected", client.UserID)

		case client := <-h.Unregister:
			h.mutex.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("User %s disconnected", client.UserID)
		}
	}
}

// IsOnline reports whether the user has an active connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SendToUser pushes an event to the user's connection if one exists.
// Delivery is fire and forget; an offline or saturated recipient is
// simply skipped.
func (h *Hub) SendToUser(userID string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Println("Failed to marshal ws event:", err)
		return
	}

	h.mutex.RLock()
	client, ok := h.clients[userID]
	h.mutex.RUnlock()
	if !ok {
		return
	}

	select {
	case client.Send <- payload:
	default:
		// slow consumer, drop the event
	}
}
