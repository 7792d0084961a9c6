package hub

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Jesus-007-cmd/chat-backend/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients post over HTTP; the
	// websocket is push-only, so inbound frames are small control noise.
	maxMessageSize = 1024
)

// Client is one live channel: a websocket connection plus its send buffer.
// No identity is tracked beyond the connection itself.
type Client struct {
	ID   uuid.UUID
	Send chan []byte

	hub  *Hub
	conn *websocket.Conn
}

// NewClient wraps an upgraded connection.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New(),
		Send: make(chan []byte, 64),
		hub:  h,
		conn: conn,
	}
}

// ReadPump drains the connection so pings/pongs and close frames are
// processed. Any payload the client sends over the socket is ignored; posting
// happens over HTTP. Exits (and unregisters) when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WritePump flushes the send buffer to the peer and keeps the connection
// alive with pings. Exits when the hub closes the send channel or a write
// fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func marshalEvent(msg models.Message) ([]byte, error) {
	return json.Marshal(Event{Event: EventNewMessage, Data: msg})
}
