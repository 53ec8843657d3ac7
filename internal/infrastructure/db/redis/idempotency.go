package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	anonymousScope        = "anon"
)

// IdempotencyStore remembers which order an Idempotency-Key produced for a
// buyer. Key format: idem:order:<userID|anon>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client; keys expire after ttl (24h when ttl <= 0).
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the order ID stored for the buyer's key, or "" if unknown.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID, key string) (string, error) {
	orderID, err := s.client.Get(ctx, s.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	return orderID, nil
}

// Remember records orderID for the buyer's key. An existing entry is kept.
func (s *IdempotencyStore) Remember(ctx context.Context, userID, key, orderID string) error {
	if err := s.client.SetNX(ctx, s.key(userID, key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(userID, k string) string {
	scope := userID
	if scope == "" {
		scope = anonymousScope
	}
	return "idem:order:" + scope + ":" + k
}
