package websocket

// EventPublisher publishes branch events to live feed subscribers
type EventPublisher interface {
	Publish(branchID int64, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish broadcasts the event to the branch
func (h *Hub) Publish(branchID int64, event Event) {
	h.Broadcast(branchID, event)
}

// NoOpPublisher discards events; used when no hub is wired
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(branchID int64, event Event) {}
