package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Jesus-007-cmd/chat-backend/internal/metrics"
	"github.com/Jesus-007-cmd/chat-backend/internal/models"
	"github.com/Jesus-007-cmd/chat-backend/internal/store"
)

// PostChatRequest represents the message creation request.
type PostChatRequest struct {
	Username string `json:"username"`
	Body     string `json:"message"`
	Color    string `json:"color"`
}

// PostChat handles POST /chats: persist the message, then hand it to the
// fanout path. Persistence strictly precedes broadcast; a store failure aborts
// the request and nothing is pushed.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req PostChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Body == "" {
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = models.DefaultUsername
	}

	msg, err := h.db.InsertMessage(r.Context(), username, req.Body, req.Color, time.Now())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to store message")
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	metrics.MessagesPosted.Inc()

	// Fire-and-forget: the request already succeeded on persistence alone.
	h.broadcaster.Broadcast(*msg)

	h.JSON(w, http.StatusCreated, msg)
}

// ListChats handles GET /chats. limit=all returns every message ascending;
// any other (or absent) limit returns the most recent 100 ascending.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	var (
		msgs []models.Message
		err  error
	)

	if r.URL.Query().Get("limit") == "all" {
		msgs, err = h.db.ListAll(r.Context())
	} else {
		msgs, err = h.db.ListRecent(r.Context(), store.DefaultHistoryLimit)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load messages")
		h.Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	h.JSON(w, http.StatusOK, msgs)
}

// NewChats handles GET /chats/new: every message with id strictly greater
// than lastReadId, ascending. This is the reconciliation path for clients
// that missed a push.
func (h *Handler) NewChats(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("lastReadId")
	if raw == "" {
		h.Error(w, http.StatusBadRequest, "lastReadId is required")
		return
	}

	lastReadID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "lastReadId must be an integer")
		return
	}

	msgs, err := h.db.ListAfter(r.Context(), lastReadID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load new messages")
		h.Error(w, http.StatusInternalServerError, "failed to load new messages")
		return
	}

	h.JSON(w, http.StatusOK, msgs)
}
