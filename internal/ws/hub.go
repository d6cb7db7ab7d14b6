package ws

import (
	"encoding/json"
	"sync"

	"quantum_clicker/internal/logger"
)

// Hub tracks connected players and pushes events to them. A player may
// hold several connections (two devices, a reconnect race); every
// connection gets the event. Delivery is best effort: a slow connection
// drops messages rather than blocking the sender.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.PlayerID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.PlayerID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.PlayerID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.PlayerID)
		}
	}
	h.mu.Unlock()
}

// Notify pushes one event to every connection of the player. Implements
// the economy engine's notifier.
func (h *Hub) Notify(playerID int64, event string, payload any) {
	msg, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		logger.Warn("ws event marshal failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[playerID] {
		select {
		case c.send <- msg:
		default:
			// client is drowning, drop the event
		}
	}
}

// Connected reports the number of players with at least one connection.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
