package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// pingPeriod must stay below pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512

	sendBufferSize = 256
)

// Client is one live feed connection bound to a single branch.
// Every log line it writes carries the client id, branch id and subject.
type Client struct {
	id          string
	branchID    int64
	subject     string
	connectedAt time.Time
	conn        *websocket.Conn
	hub         *Hub
	send        chan []byte
	logger      zerolog.Logger

	delivered atomic.Int64
	dropped   atomic.Int64

	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a client for an upgraded connection of subject on branchID
func NewClient(conn *websocket.Conn, branchID int64, subject string, hub *Hub) *Client {
	id := uuid.New().String()
	return &Client{
		id:          id,
		branchID:    branchID,
		subject:     subject,
		connectedAt: time.Now(),
		conn:        conn,
		hub:         hub,
		send:        make(chan []byte, sendBufferSize),
		logger: log.With().
			Str("client_id", id).
			Int64("branch_id", branchID).
			Str("subject", subject).
			Logger(),
	}
}

func (c *Client) ID() string {
	return c.id
}

// BranchID returns the branch whose events the client receives
func (c *Client) BranchID() int64 {
	return c.branchID
}

// Subject returns the authenticated principal behind the connection
func (c *Client) Subject() string {
	return c.subject
}

// Dropped returns how many events were refused because the send buffer was full
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// Send queues an event for the client. A full buffer means the client cannot
// keep up with its branch feed and the event is counted as dropped.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		if c.dropped.Add(1) == 1 {
			c.logger.Warn().Int("buffer", sendBufferSize).Msg("WebSocket client too slow for branch feed")
		}
		return ErrClientClosed
	}
}

// Close closes the connection. Safe to call from several goroutines.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
		c.logger.Info().
			Dur("connected_for", time.Since(c.connectedAt)).
			Int64("delivered", c.delivered.Load()).
			Int64("dropped", c.dropped.Load()).
			Msg("WebSocket client disconnected")
	})
	return closeErr
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump keeps the read deadline alive through pongs and unregisters the
// client once the peer goes away. Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket unexpected close")
			}
			return
		}
		// the feed is one-way; anything the browser sends is discarded
	}
}

// WritePump delivers queued branch events and pings the peer.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket write error")
				return
			}
			c.delivered.Add(1)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("WebSocket ping failed")
				return
			}
		}
	}
}
