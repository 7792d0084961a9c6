package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/Jesus-007-cmd/chat-backend/internal/models"
)

// fanoutChannel is the pub/sub channel shared by all relay instances.
const fanoutChannel = "chat:messages"

// RedisStore bridges fanout across relay instances over Redis pub/sub.
// Delivery is best-effort, matching the push contract: a dropped pub/sub
// message is recovered by clients through the delta read path.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// PublishMessage pushes a created message to the shared fanout channel.
func (s *RedisStore) PublishMessage(ctx context.Context, msg models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, fanoutChannel, data).Err()
}

// SubscribeMessages subscribes to the shared fanout channel and invokes
// deliver for every message published by any relay instance. It blocks until
// ctx is cancelled.
func (s *RedisStore) SubscribeMessages(ctx context.Context, deliver func(models.Message)) error {
	sub := s.client.Subscribe(ctx, fanoutChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg models.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			deliver(msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
