// Package hub owns the set of live websocket clients and fans newly created
// messages out to them. Delivery is fire-and-forget: clients that miss a push
// reconcile through GET /chats/new.
package hub

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jesus-007-cmd/chat-backend/internal/metrics"
	"github.com/Jesus-007-cmd/chat-backend/internal/models"
)

// EventNewMessage is the event name carried on every push.
const EventNewMessage = "newMessage"

// publishTimeout bounds a single bridge publish; the push contract is
// best-effort, so a slow peer is treated as a failed delivery.
const publishTimeout = 5 * time.Second

// Event is the envelope written to live channels.
type Event struct {
	Event string         `json:"event"`
	Data  models.Message `json:"data"`
}

// Broadcaster is the boundary the ingestion handler publishes through.
type Broadcaster interface {
	Broadcast(msg models.Message)
}

// MessageBridge shares fanout across relay instances. Optional; implemented
// by store.RedisStore.
type MessageBridge interface {
	PublishMessage(ctx context.Context, msg models.Message) error
	SubscribeMessages(ctx context.Context, deliver func(models.Message)) error
}

// Hub contains the connection registry and the fanout loop. All registry
// mutation happens inside Run, so no lock is needed.
type Hub struct {
	logger zerolog.Logger
	bridge MessageBridge

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Message
	done       chan struct{}
}

// NewHub creates a hub. bridge may be nil, in which case fanout is local to
// this process.
func NewHub(logger zerolog.Logger, bridge MessageBridge) *Hub {
	return &Hub{
		logger:     logger,
		bridge:     bridge,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Message, 256),
		done:       make(chan struct{}),
	}
}

// Register adds a live client to the registry. After shutdown the client is
// simply closed so its pumps unwind.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

// Unregister removes a client from the registry and closes its send channel.
// Safe to call after shutdown, where the registry is already drained.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast hands a persisted message to the fanout path. It never blocks the
// caller: when the bridge is configured the message goes through pub/sub, and
// the local queue drops on overflow rather than stalling ingestion.
func (h *Hub) Broadcast(msg models.Message) {
	if h.bridge != nil {
		go h.publish(msg)
		return
	}
	h.enqueue(msg)
}

// publish pushes one message through the bridge with a bounded deadline,
// falling back to local delivery when the bridge is down or slow.
func (h *Hub) publish(msg models.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := h.bridge.PublishMessage(ctx, msg); err != nil {
		h.logger.Warn().Err(err).Int64("id", msg.ID).Msg("bridge publish failed, delivering locally")
		h.enqueue(msg)
	}
}

func (h *Hub) enqueue(msg models.Message) {
	select {
	case h.broadcast <- msg:
	default:
		metrics.BroadcastsDropped.Inc()
		h.logger.Warn().Int64("id", msg.ID).Msg("fanout queue full, message dropped")
	}
}

// Run owns the registry until ctx is cancelled. When a bridge is configured
// it also consumes the shared channel so messages posted on other instances
// reach this instance's clients.
func (h *Hub) Run(ctx context.Context) {
	if h.bridge != nil {
		go func() {
			if err := h.bridge.SubscribeMessages(ctx, h.enqueue); err != nil && ctx.Err() == nil {
				h.logger.Error().Err(err).Msg("bridge subscription ended")
			}
		}()
	}

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			metrics.WSConnections.Set(float64(len(h.clients)))
			h.logger.Debug().Str("client_id", client.ID.String()).Msg("client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			metrics.WSConnections.Set(float64(len(h.clients)))
			h.logger.Debug().Str("client_id", client.ID.String()).Msg("client disconnected")

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			metrics.WSConnections.Set(0)
			return
		}
	}
}

// deliver writes one message to every registered client. A client whose send
// buffer is full is dropped; it can reconnect and catch up via the delta read.
func (h *Hub) deliver(msg models.Message) {
	data, err := marshalEvent(msg)
	if err != nil {
		h.logger.Error().Err(err).Int64("id", msg.ID).Msg("failed to encode event")
		return
	}

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			metrics.BroadcastsDropped.Inc()
			delete(h.clients, client)
			close(client.Send)
			h.logger.Warn().Str("client_id", client.ID.String()).Msg("client send buffer full, dropped")
		}
	}
}
