// internal/interfaces/http/realtime/client.go
package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 32
)

// Conn is the part of a websocket connection the client uses
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	ReadMessage() (int, []byte, error)
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one dashboard connection
type Client struct {
	hub          *Hub
	conn         Conn
	send         chan []byte
	userID       string
	campusID     uint
	restaurantID uint

	mu     sync.Mutex
	closed bool
}

// NewClient creates a client; restaurantID narrows events to one restaurant
func NewClient(hub *Hub, conn Conn, userID string, campusID, restaurantID uint) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		userID:       userID,
		campusID:     campusID,
		restaurantID: restaurantID,
	}
}

// enqueue queues data without blocking; false means the buffer is full
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.conn.Close()
}

// WritePump forwards queued messages and keeps the connection alive
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.hub.Detach(c)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.WithError(err).Debug("order feed write failed")
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// ReadPump drains the connection until the peer goes away. The feed is
// one-way so anything the client sends is discarded.
func (c *Client) ReadPump() {
	defer c.hub.Detach(c)

	c.conn.SetReadLimit(1 << 12)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.logger.WithError(err).Debug("order feed read failed")
			}
			return
		}
	}
}
