// Package ws fans completed operations out to connected participants.
package ws

import (
	"encoding/json"
	"sync"
)

// Hub tracks connected clients and the chat rooms they joined. All
// methods are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // profileID -> clients
	rooms   map[string]map[*Client]struct{} // chatID -> clients
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ProfileID]; !ok {
		h.clients[c.ProfileID] = make(map[*Client]struct{})
	}
	h.clients[c.ProfileID][c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.ProfileID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.ProfileID)
		}
	}
	for chatID, set := range h.rooms {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, chatID)
		}
	}
	c.closeSend()
}

func (h *Hub) Join(chatID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[*Client]struct{})
	}
	h.rooms[chatID][c] = struct{}{}
}

func (h *Hub) Leave(chatID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[chatID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// BroadcastToChat sends a JSON frame to every client in the chat room.
// Slow clients are skipped rather than blocking the broadcast.
func (h *Hub) BroadcastToChat(chatID string, frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[chatID] {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// SendToProfile delivers a frame to every socket a profile has open.
func (h *Hub) SendToProfile(profileID string, frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[profileID] {
		select {
		case c.send <- payload:
		default:
		}
	}
}
