package ws

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/observability/metrics"
)

// SessionRegistry maps a user to their live connection. It holds transient
// state only: rebuilt empty on every restart, never reconciled with the
// store.
type SessionRegistry interface {
	Register(userID uuid.UUID, c *Client)
	Unregister(userID uuid.UUID, c *Client)
	Lookup(userID uuid.UUID) (*Client, bool)
}

// Hub is the process-wide session registry and delivery point. One connection
// per user; a newer connection for the same user displaces the old one.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
	}
}

func (h *Hub) Register(userID uuid.UUID, c *Client) {
	h.mu.Lock()
	old := h.clients[userID]
	h.clients[userID] = c
	total := len(h.clients)
	h.mu.Unlock()

	if old != nil {
		// Last writer wins; shut the displaced connection down. Its teardown
		// skips the unregister guard, so the gauge stays put: one live
		// connection replaced by another.
		old.Close()
	} else {
		metrics.WSConnections.Inc()
	}
	log.Printf("ws hub: user %s connected (%d total)", userID, total)
}

// Unregister removes the entry only if it still points at c, so a displaced
// connection's teardown cannot evict its successor.
func (h *Hub) Unregister(userID uuid.UUID, c *Client) {
	h.mu.Lock()
	current, ok := h.clients[userID]
	if ok && current == c {
		delete(h.clients, userID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok && current == c {
		metrics.WSConnections.Dec()
		log.Printf("ws hub: user %s disconnected (%d total)", userID, total)
	}
}

func (h *Hub) Lookup(userID uuid.UUID) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

// SendToUser delivers an event to one user's connection. It reports false
// when the user has no registered connection or their buffer is full; the
// caller's persisted state stays authoritative either way.
func (h *Hub) SendToUser(userID uuid.UUID, event *Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return false
	}

	c, ok := h.Lookup(userID)
	if !ok {
		metrics.MessagesRelayedTotal.WithLabelValues(event.Type, "false").Inc()
		return false
	}

	delivered := c.trySend(data)
	metrics.MessagesRelayedTotal.WithLabelValues(event.Type, strconv.FormatBool(delivered)).Inc()
	return delivered
}
