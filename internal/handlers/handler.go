package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Jesus-007-cmd/chat-backend/internal/hub"
	"github.com/Jesus-007-cmd/chat-backend/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db          store.DataStore
	broadcaster hub.Broadcaster
	redis       *store.RedisStore
	logger      zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies. redis may be
// nil when no bridge is configured.
func NewHandler(db store.DataStore, broadcaster hub.Broadcaster, redis *store.RedisStore, logger zerolog.Logger) *Handler {
	return &Handler{db: db, broadcaster: broadcaster, redis: redis, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
