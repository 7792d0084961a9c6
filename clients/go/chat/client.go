// Package chat provides a client for the chat relay API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Message mirrors the relay's wire representation of a chat message.
type Message struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Body      string `json:"message"`
	Timestamp string `json:"timestamp"`
	Color     string `json:"color"`
}

// Event is the envelope pushed on the live channel.
type Event struct {
	Event string  `json:"event"`
	Data  Message `json:"data"`
}

// Client is a chat relay API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new relay client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return fmt.Errorf("relay: %s (status %d)", e.Error, resp.StatusCode)
		}
		return fmt.Errorf("relay: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health fetches the relay health report.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Post publishes a message. An empty username falls back to the server-side
// default.
func (c *Client) Post(ctx context.Context, username, body, color string) (*Message, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"message":  body,
		"color":    color,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chats", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var msg Message
	if err := c.do(req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns the most recent 100 messages ascending, or every message
// when all is true.
func (c *Client) History(ctx context.Context, all bool) ([]Message, error) {
	u := c.BaseURL + "/chats"
	if all {
		u += "?limit=all"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var msgs []Message
	if err := c.do(req, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// NewMessages returns every message with id greater than lastReadID,
// ascending. Use it to reconcile after a dropped live connection.
func (c *Client) NewMessages(ctx context.Context, lastReadID int64) ([]Message, error) {
	u := c.BaseURL + "/chats/new?lastReadId=" + strconv.FormatInt(lastReadID, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var msgs []Message
	if err := c.do(req, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Listen connects to the live channel and invokes handler for every pushed
// message until ctx is cancelled or the connection drops. Push is
// best-effort; callers should reconcile with NewMessages after Listen
// returns.
func (c *Client) Listen(ctx context.Context, handler func(Message)) error {
	wsURL, err := url.Parse(c.BaseURL + "/ws")
	if err != nil {
		return err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// The watcher must not outlive this call when the read loop exits first
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Event == "newMessage" {
			handler(ev.Data)
		}
	}
}
