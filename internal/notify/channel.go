package notify

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var errChannelClosed = errors.New("channel closed")

// Channel is one agent-facing delivery path for completion events.
type Channel interface {
	Send(v any) error
	IsOpen() bool
	Close() error
}

// wsChannel adapts a gorilla websocket connection to Channel. The write lock
// serializes pushes arriving from concurrent payment completions.
type wsChannel struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWebSocketChannel wraps an upgraded websocket connection.
func NewWebSocketChannel(conn *websocket.Conn) Channel {
	return &wsChannel{conn: conn}
}

func (c *wsChannel) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errChannelClosed
	}
	if err := c.conn.WriteJSON(v); err != nil {
		// A failed write means the peer is gone; stop reporting open.
		c.closed = true
		return err
	}
	return nil
}

func (c *wsChannel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *wsChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
