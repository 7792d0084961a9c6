package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 5; i++ {
		msg, err := s.InsertMessage(ctx, "alice", fmt.Sprintf("message %d", i), "#fff", time.Now())
		require.NoError(t, err)
		assert.Greater(t, msg.ID, lastID)
		lastID = msg.ID
	}
}

func TestInsertReturnsMaterializedMessage(t *testing.T) {
	s := newTestStore(t)

	ts := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	msg, err := s.InsertMessage(context.Background(), "alice", "hi", "#fff", ts)
	require.NoError(t, err)

	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "alice", msg.Username)
	assert.Equal(t, "hi", msg.Body)
	assert.Equal(t, "#fff", msg.Color)
	// Sub-second precision is truncated, not rounded
	assert.Equal(t, "2025-03-14 09:26:53", msg.Timestamp)
}

func TestListRecentReturnsNewestAscending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 150; i++ {
		_, err := s.InsertMessage(ctx, "alice", fmt.Sprintf("message %d", i), "", time.Now())
		require.NoError(t, err)
	}

	msgs, err := s.ListRecent(ctx, DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, msgs, 100)

	// Most recent 100, oldest first: ids 51..150 ascending
	assert.Equal(t, int64(51), msgs[0].ID)
	assert.Equal(t, int64(150), msgs[99].ID)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}
}

func TestListRecentEmptyStore(t *testing.T) {
	s := newTestStore(t)

	msgs, err := s.ListRecent(context.Background(), DefaultHistoryLimit)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListAllAscending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 150; i++ {
		_, err := s.InsertMessage(ctx, "alice", fmt.Sprintf("message %d", i), "", time.Now())
		require.NoError(t, err)
	}

	msgs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 150)
	assert.Equal(t, int64(1), msgs[0].ID)
	assert.Equal(t, int64(150), msgs[149].ID)
}

func TestListAfter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		_, err := s.InsertMessage(ctx, "alice", fmt.Sprintf("message %d", i), "", time.Now())
		require.NoError(t, err)
	}

	msgs, err := s.ListAfter(ctx, 7)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(8), msgs[0].ID)
	assert.Equal(t, int64(9), msgs[1].ID)
	assert.Equal(t, int64(10), msgs[2].ID)
}

func TestListAfterMaxIDReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg, err := s.InsertMessage(ctx, "alice", "hi", "", time.Now())
	require.NoError(t, err)

	msgs, err := s.ListAfter(ctx, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListAfterIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := s.InsertMessage(ctx, "alice", fmt.Sprintf("message %d", i), "", time.Now())
		require.NoError(t, err)
	}

	first, err := s.ListAfter(ctx, 2)
	require.NoError(t, err)
	second, err := s.ListAfter(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
