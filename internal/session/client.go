package session

import (
	"sync"

	"github.com/gorilla/websocket"

	"drawparty/internal/metrics"
	"drawparty/internal/models"
)

// sendBuffer is the per-client outbound queue depth. A peer that falls this
// far behind starts losing frames instead of stalling the room.
const sendBuffer = 256

// Client is the server-side record for one connected peer. The transport
// supplies only the identifier and the socket; every game-relevant field
// lives here.
type Client struct {
	ID   string
	conn *websocket.Conn

	mu      sync.Mutex
	hook    func([]byte)
	out     chan []byte
	closed  bool
	room    *Room
	name    string
	nameSet bool

	// activePath is the in-progress stroke. It is only ever touched by the
	// goroutine running this client's read loop, so it needs no lock.
	activePath *models.Path
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{ID: id, conn: conn, out: make(chan []byte, sendBuffer)}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func([]byte)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send queues a frame for delivery. It never blocks: if the client is gone
// or its queue is full the frame is dropped, which is the contract for a
// best-effort broadcast.
func (c *Client) Send(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.closed || c.conn == nil {
		return
	}
	select {
	case c.out <- frame:
	default:
		metrics.FrameDropped()
	}
}

// WritePump drains the outbound queue onto the socket. Run it in its own
// goroutine; it exits when Close is called or the first write fails.
func (c *Client) WritePump() {
	for frame := range c.out {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

// Close stops the outbound queue. Safe to call more than once; later Sends
// become no-ops.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

// Room returns the room this client joined, or nil while unjoined.
func (c *Client) Room() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) setRoom(r *Room) {
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()
}

// DisplayName returns the chosen name, or "" if none was set.
func (c *Client) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// setDisplayNameOnce applies first-write-wins semantics and reports whether
// the name was taken.
func (c *Client) setDisplayNameOnce(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nameSet {
		return false
	}
	c.name = name
	c.nameSet = true
	return true
}
