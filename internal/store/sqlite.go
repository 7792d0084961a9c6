package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Jesus-007-cmd/chat-backend/internal/models"
)

// SQLiteStore handles SQLite database operations. It backs the relay when no
// DATABASE_URL is configured and serves as the store in tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/chat.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chat.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// Writes are serialized over a single connection, so ids are assigned in
	// insert order even under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates the messages table if it doesn't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertMessage appends a message row. AUTOINCREMENT guarantees ids are
// strictly increasing and never reused, even after deletes.
func (s *SQLiteStore) InsertMessage(ctx context.Context, username, body, color string, ts time.Time) (*models.Message, error) {
	stamp := ts.UTC().Truncate(time.Second).Format(models.TimeFormat)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (username, message, timestamp, color)
		VALUES (?, ?, ?, ?)
	`, username, body, stamp, color)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Message{
		ID:        id,
		Username:  username,
		Body:      body,
		Timestamp: stamp,
		Color:     color,
	}, nil
}

// ListRecent returns the newest `limit` messages in ascending id order.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, message, timestamp, color
		FROM messages ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, err := scanSQLMessages(rows)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// ListAll returns every stored message in ascending id order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, message, timestamp, color
		FROM messages ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLMessages(rows)
}

// ListAfter returns every message with id > lastReadID in ascending id order.
func (s *SQLiteStore) ListAfter(ctx context.Context, lastReadID int64) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, message, timestamp, color
		FROM messages WHERE id > ? ORDER BY id ASC
	`, lastReadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLMessages(rows)
}

func scanSQLMessages(rows *sql.Rows) ([]models.Message, error) {
	msgs := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.Username, &msg.Body, &msg.Timestamp, &msg.Color); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
