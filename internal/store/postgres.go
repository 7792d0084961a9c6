package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jesus-007-cmd/chat-backend/internal/metrics"
	"github.com/Jesus-007-cmd/chat-backend/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
// The pool connects lazily; callers that want to surface unreachability at
// startup should Ping and treat failure as a warning, not a fatal error —
// the pool recovers on its own once the database is reachable again.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// InitSchema creates the messages table if it does not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			message TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			color TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertMessage appends a message row. The id is assigned by the BIGSERIAL
// sequence, so it is strictly increasing across all inserts on this database.
func (s *PostgresStore) InsertMessage(ctx context.Context, username, body, color string, ts time.Time) (*models.Message, error) {
	start := time.Now()
	defer func() { metrics.PostgresLatency.Observe(time.Since(start).Seconds()) }()

	msg := &models.Message{}
	var stored time.Time
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (username, message, timestamp, color)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, message, timestamp, color
	`, username, body, ts.UTC().Truncate(time.Second), color).Scan(
		&msg.ID,
		&msg.Username,
		&msg.Body,
		&stored,
		&msg.Color,
	)
	if err != nil {
		return nil, err
	}
	msg.Timestamp = stored.Format(models.TimeFormat)
	return msg, nil
}

// ListRecent returns the newest `limit` messages in ascending id order.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.Message, error) {
	start := time.Now()
	defer func() { metrics.PostgresLatency.Observe(time.Since(start).Seconds()) }()

	rows, err := s.pool.Query(ctx, `
		SELECT id, username, message, timestamp, color
		FROM messages ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// ListAll returns every stored message in ascending id order.
func (s *PostgresStore) ListAll(ctx context.Context) ([]models.Message, error) {
	start := time.Now()
	defer func() { metrics.PostgresLatency.Observe(time.Since(start).Seconds()) }()

	rows, err := s.pool.Query(ctx, `
		SELECT id, username, message, timestamp, color
		FROM messages ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ListAfter returns every message with id > lastReadID in ascending id order.
func (s *PostgresStore) ListAfter(ctx context.Context, lastReadID int64) ([]models.Message, error) {
	start := time.Now()
	defer func() { metrics.PostgresLatency.Observe(time.Since(start).Seconds()) }()

	rows, err := s.pool.Query(ctx, `
		SELECT id, username, message, timestamp, color
		FROM messages WHERE id > $1 ORDER BY id ASC
	`, lastReadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]models.Message, error) {
	msgs := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		var ts time.Time
		if err := rows.Scan(&msg.ID, &msg.Username, &msg.Body, &ts, &msg.Color); err != nil {
			return nil, err
		}
		msg.Timestamp = ts.Format(models.TimeFormat)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
