// Package cache provides a Redis-backed CacheStore for the response cache
// middleware. The store is strictly best-effort: Redis being down degrades
// every lookup to a miss and every write to a no-op.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the given Redis URL (redis://host:port/db) and
// returns a store namespaced by prefix.
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisStore) Get(key string) ([]byte, bool) {
	data, err := s.client.Get(context.Background(), s.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(key string, value []byte, ttl time.Duration) {
	s.client.Set(context.Background(), s.key(key), value, ttl)
}

func (s *RedisStore) Delete(key string) {
	s.client.Del(context.Background(), s.key(key))
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
