package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chats", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hi", req["message"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Message{ID: 1, Username: "alice", Body: "hi", Color: "#fff"})
	}))
	defer srv.Close()

	msg, err := NewClient(srv.URL).Post(context.Background(), "alice", "hi", "#fff")
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "hi", msg.Body)
}

func TestPostServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to store message"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Post(context.Background(), "alice", "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store message")
}

func TestHistoryAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]Message{{ID: 1}, {ID: 2}})
	}))
	defer srv.Close()

	msgs, err := NewClient(srv.URL).History(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

// newPushServer serves /ws, pushes the given events, then closes the
// connection.
func newPushServer(t *testing.T, events ...Event) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for _, ev := range events {
			data, err := json.Marshal(ev)
			require.NoError(t, err)
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestListenDeliversPushedMessages(t *testing.T) {
	srv := newPushServer(t,
		Event{Event: "newMessage", Data: Message{ID: 1, Body: "hi"}},
		Event{Event: "presence", Data: Message{ID: 99}}, // unknown events are skipped
		Event{Event: "newMessage", Data: Message{ID: 2, Body: "again"}},
	)

	var got []Message
	err := NewClient(srv.URL).Listen(context.Background(), func(m Message) {
		got = append(got, m)
	})
	require.Error(t, err) // connection closed by the server

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestListenDoesNotLeakWatcherGoroutine(t *testing.T) {
	srv := newPushServer(t)
	client := NewClient(srv.URL)

	before := runtime.NumGoroutine()

	// Each call returns on server close while the caller's ctx stays open;
	// the per-call watcher must unwind with it
	for i := 0; i < 5; i++ {
		err := client.Listen(context.Background(), func(Message) {})
		require.Error(t, err)
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 50*time.Millisecond)
}

func TestListenStopsOnContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	hold := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		<-hold
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(hold) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := NewClient(srv.URL).Listen(ctx, func(Message) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chats/new", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("lastReadId"))
		json.NewEncoder(w).Encode([]Message{{ID: 8}})
	}))
	defer srv.Close()

	msgs, err := NewClient(srv.URL).NewMessages(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(8), msgs[0].ID)
}
