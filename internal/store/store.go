package store

import (
	"context"
	"time"

	"github.com/Jesus-007-cmd/chat-backend/internal/models"
)

// DefaultHistoryLimit caps the bounded history scan.
const DefaultHistoryLimit = 100

// DataStore defines the interface for the sequenced message store.
// Both PostgresStore and SQLiteStore implement this interface. The store
// assigns each inserted message a strictly increasing integer id; that id is
// the single ordering authority for readers.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// InsertMessage appends a message and returns the full materialized row,
	// including the store-assigned id. ts is truncated to whole seconds.
	InsertMessage(ctx context.Context, username, body, color string, ts time.Time) (*models.Message, error)

	// ListRecent returns the most recent `limit` messages in ascending id
	// order. The underlying scan is descending and bounded, then reversed, so
	// the result is always "newest limit, oldest first".
	ListRecent(ctx context.Context, limit int) ([]models.Message, error)

	// ListAll returns every stored message in ascending id order.
	ListAll(ctx context.Context) ([]models.Message, error)

	// ListAfter returns every message with id strictly greater than lastReadID,
	// in ascending id order.
	ListAfter(ctx context.Context, lastReadID int64) ([]models.Message, error)
}

// reverse flips a slice scanned newest-first into ascending id order.
func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
