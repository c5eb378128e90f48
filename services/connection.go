package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/DRafi2006/FOUND/utils"
)

// Connection is the process-local handle for one open client socket.
// The connection id is generated per connect; the user id is empty until
// the client announces itself with a user_online event. All outbound
// traffic goes through the send queue, drained by a single writer
// goroutine, so handlers never write to the socket directly.
type Connection struct {
	ID     string
	UserID string

	ws *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewConnection creates a connection handle for an upgraded socket.
func NewConnection(ws *websocket.Conn, queueSize int) *Connection {
	return &Connection{
		ID:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, queueSize),
	}
}

// Send queues a payload for delivery. Delivery is best-effort: if the
// writer cannot keep up, or the connection has already been closed, the
// frame is dropped for this connection only. Broadcasters snapshot
// connection handles outside any lock, so Send must stay safe against a
// concurrent Close.
func (c *Connection) Send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// WritePump drains the send queue to the socket. It runs as the only
// writer goroutine for this connection and returns when Close is called
// or the socket write fails.
func (c *Connection) WritePump(logger *utils.Logger) {
	defer c.ws.Close()

	for payload := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Debug("Write failed, closing connection", "connId", c.ID, "error", err)
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// Close shuts down the writer goroutine. Safe while other goroutines
// still hold the handle from an earlier snapshot: from here on Send
// drops frames instead of touching the closed queue.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
