package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventDedup implements ports.EventDeduplicator using Redis SET NX.
// Consumed event IDs are remembered for a TTL so redelivered messages
// do not trigger a second payment.
type EventDedup struct {
	client *goredis.Client
	prefix string
}

// NewEventDedup creates a new Redis-backed event deduplicator.
func NewEventDedup(client *goredis.Client) *EventDedup {
	return &EventDedup{
		client: client,
		prefix: "rental-event:",
	}
}

// CheckAndSet atomically checks whether the event key was seen, marking it
// if not. Returns true if the event is new, false if already processed.
func (s *EventDedup) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists, event was already handled
			return false, nil
		}
		return false, fmt.Errorf("redis event dedup: %w", err)
	}
	return result == "OK", nil
}

// Clear removes the event key so a redelivered copy can be processed again.
// Used when handling fails for reasons a retry could resolve.
func (s *EventDedup) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis event dedup clear: %w", err)
	}
	return nil
}
