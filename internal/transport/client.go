package transport

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gitlab.com/secp/services/canvas/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// SessionHandler receives connection lifecycle and decoded events. The
// coordinator implements it.
type SessionHandler interface {
	Connect(sessionID string)
	HandleEvent(sessionID string, event models.Inbound)
	Disconnect(sessionID string)
}

// Client is one WebSocket connection. ReadPump decodes and dispatches
// inbound events in arrival order; WritePump drains the send buffer. All
// events for a session therefore reach the coordinator serially.
type Client struct {
	SessionID string

	hub     *Hub
	conn    *websocket.Conn
	handler SessionHandler
	send    chan []byte

	// Cursor positions stream at display rate; excess updates are dropped
	// here before they reach the coordinator. Dropping is lossless because
	// cursor_move carries no state.
	cursorLimiter *rate.Limiter
}

// NewClient wraps an upgraded connection. cursorRate is the maximum
// cursor_move events per second accepted from the peer; zero or negative
// disables throttling.
func NewClient(sessionID string, conn *websocket.Conn, hub *Hub, handler SessionHandler, cursorRate float64) *Client {
	var limiter *rate.Limiter
	if cursorRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cursorRate), int(cursorRate))
	}
	return &Client{
		SessionID:     sessionID,
		hub:           hub,
		conn:          conn,
		handler:       handler,
		send:          make(chan []byte, 256),
		cursorLimiter: limiter,
	}
}

// ReadPump reads events from the connection until it drops, then runs the
// disconnect cleanup: the coordinator discards the session and the hub
// forgets the client.
func (c *Client) ReadPump() {
	defer func() {
		c.handler.Disconnect(c.SessionID)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Transport] Read error from %s: %v", c.SessionID, err)
			}
			break
		}

		event, err := models.DecodeInbound(message)
		if err != nil {
			log.Printf("[Transport] Dropping invalid event from %s: %v", c.SessionID, err)
			continue
		}

		if _, isCursor := event.(models.CursorMove); isCursor && c.cursorLimiter != nil && !c.cursorLimiter.Allow() {
			continue
		}

		c.handler.HandleEvent(c.SessionID, event)
	}
}

// WritePump writes queued events to the connection and keeps it alive with
// pings. It exits when the connection dies; the peer's read side then
// triggers disconnect cleanup through ReadPump.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues an outbound frame without blocking. A full buffer means a
// dead or hopelessly slow peer; the frame is dropped and the keepalive
// machinery will reap the connection.
func (c *Client) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
		log.Printf("[Transport] Send buffer full for %s, dropping event", c.SessionID)
	}
}

// Close tears down the connection; both pumps exit on the closed socket.
func (c *Client) Close() {
	c.conn.Close()
}
