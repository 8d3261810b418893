package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Channel is one client's outbound conduit. Implementations must be safe
// for concurrent Send calls and must fail fast once the peer is gone;
// registry and router locks are never held across a Send.
type Channel interface {
	Send(payload []byte) error
	Close() error
}

var errChannelClosed = errors.New("channel closed")

// wsChannel wraps a gorilla connection with a write mutex and a deadline
// per write. Control frames (ping) go through WriteControl, which gorilla
// allows concurrently with WriteMessage.
type wsChannel struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	writeWait time.Duration
	closed    bool
}

func newWSChannel(conn *websocket.Conn, writeWait time.Duration) *wsChannel {
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &wsChannel{conn: conn, writeWait: writeWait}
}

func (c *wsChannel) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errChannelClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close sends a close frame and tears the socket down. Idempotent.
func (c *wsChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Ping sends a control ping; used by the keepalive loop.
func (c *wsChannel) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeWait))
}
