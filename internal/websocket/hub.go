package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	BranchID() int64
	Send(data []byte) error
	Close() error
}

// Hub fans branch events out to the connections subscribed to that branch.
// It is safe for concurrent use.
type Hub struct {
	// branches maps branch ID to a map of client ID to client
	branches map[int64]map[string]ClientInterface
	mu       sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		branches: make(map[int64]map[string]ClientInterface),
	}
}

// Register adds a client under its branch
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	branchID := client.BranchID()
	if h.branches[branchID] == nil {
		h.branches[branchID] = make(map[string]ClientInterface)
	}
	h.branches[branchID][client.ID()] = client

	log.Debug().
		Int64("branch_id", branchID).
		Str("client_id", client.ID()).
		Msg("Live feed client registered")
}

// Unregister removes a client; unknown clients are ignored
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	branchID := client.BranchID()
	clients, ok := h.branches[branchID]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}

	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.branches, branchID)
	}

	log.Debug().
		Int64("branch_id", branchID).
		Str("client_id", client.ID()).
		Msg("Live feed client unregistered")
}

// Broadcast sends an event to every client of a branch
func (h *Hub) Broadcast(branchID int64, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int64("branch_id", branchID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients := make([]ClientInterface, 0, len(h.branches[branchID]))
	for _, client := range h.branches[branchID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	for _, client := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int64("branch_id", branchID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int64("branch_id", branchID).
		Str("event_type", event.Type).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients connected to a branch
func (h *Hub) ClientCount(branchID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.branches[branchID])
}

// TotalClientCount returns the number of connected clients across all branches
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.branches {
		total += len(clients)
	}
	return total
}
