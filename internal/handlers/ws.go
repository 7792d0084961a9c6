package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Jesus-007-cmd/chat-backend/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware on the HTTP
	// surface; the push channel carries no credentials and is read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers it as a live channel. The
// channel only ever receives pushes; there is no handshake payload.
func ServeWS(h *hub.Hub, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := hub.NewClient(h, conn)
		h.Register(c)

		go c.WritePump()
		c.ReadPump()
	}
}
