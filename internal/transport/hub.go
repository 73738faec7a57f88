// Package transport adapts the coordinator to WebSocket connections: it
// upgrades connections, decodes wire events, and delivers outbound events
// to sessions and room groups.
package transport

import (
	"encoding/json"
	"log"
	"sync"

	"gitlab.com/secp/services/canvas/internal/models"
)

// Hub tracks connected clients and the room groups they belong to. It is
// the transport half of the system: it knows connections and groups,
// nothing about strokes or history. Hub implements canvas.Broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // session id -> client
	rooms   map[string]map[string]*Client // room id -> session id -> client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Register adds a connected client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.SessionID] = client
	log.Printf("[Transport] Client registered: %s (total: %d)", client.SessionID, len(h.clients))
}

// Unregister removes a client and scrubs it from any room groups it was
// still in.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.SessionID]; !ok {
		return
	}
	delete(h.clients, client.SessionID)
	for roomID, members := range h.rooms {
		delete(members, client.SessionID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	log.Printf("[Transport] Client unregistered: %s (total: %d)", client.SessionID, len(h.clients))
}

// JoinRoom adds a session to a room group.
func (h *Hub) JoinRoom(roomID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[sessionID]
	if !ok {
		return
	}
	members := h.rooms[roomID]
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[roomID] = members
	}
	members[sessionID] = client
}

// LeaveRoom removes a session from a room group.
func (h *Hub) LeaveRoom(roomID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// SendTo delivers an event to one session. Best effort: unknown sessions
// and full send buffers drop the event.
func (h *Hub) SendTo(sessionID string, event *models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Transport] Failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	client, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.enqueue(data)
}

// BroadcastToRoom delivers an event to every member of a room group,
// skipping excludeSessionID when non-empty. Delivery is fire-and-forget: a
// dead or slow member drops its copy without affecting the others.
func (h *Hub) BroadcastToRoom(roomID string, event *models.Event, excludeSessionID string) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Transport] Failed to marshal %s broadcast: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.rooms[roomID]))
	for sessionID, client := range h.rooms[roomID] {
		if sessionID == excludeSessionID {
			continue
		}
		recipients = append(recipients, client)
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		client.enqueue(data)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every client connection.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	log.Printf("[Transport] Shutting down hub, closing %d connections", len(clients))
	for _, client := range clients {
		client.Close()
	}
}
