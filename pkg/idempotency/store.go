package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pending marks a key whose request is still being processed.
const Pending = "pending"

// Store keeps idempotency reservations in Redis.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, prefix: "idem"}
}

// Connect dials Redis at addr and verifies the connection.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *Store) key(key string) string {
	return s.prefix + ":" + key
}

// Reserve claims key. When the key is already held it returns the stored
// value (Pending or a completed result) and reserved=false.
func (s *Store) Reserve(ctx context.Context, key string) (existing string, reserved bool, err error) {
	ok, err := s.rdb.SetNX(ctx, s.key(key), Pending, s.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as in flight.
		return Pending, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, false, nil
}

// Complete stores the result for key.
func (s *Store) Complete(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.key(key), value, s.ttl).Err()
}

// Release drops a reservation so the request can be retried.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}
