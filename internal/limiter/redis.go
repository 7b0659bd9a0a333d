package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the server-side limiter with a shared store so every relay
// instance sees the same attempt history. Values expire with the window; the
// limiter additionally prunes on write.
//
// Reads and writes are not atomic across instances. A concurrent burst can
// let a handful of extra attempts through, which is acceptable for a
// contact-form throttle.
type RedisStore struct {
	db *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{db: client}
}

func (s *RedisStore) Get(key string) (string, error) {
	value, err := s.db.Get(context.Background(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Set(key, value string, ttl time.Duration) error {
	return s.db.Set(context.Background(), key, value, ttl).Err()
}

func (s *RedisStore) Remove(key string) error {
	return s.db.Del(context.Background(), key).Err()
}
