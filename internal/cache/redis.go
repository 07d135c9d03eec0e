package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the quote cache with Redis so replicas share entries.
// Values are stored as JSON under a common key prefix; Redis expiry handles
// the TTL, so CleanExpired has nothing to do for this backend.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCache creates a Redis-backed cache. The caller owns the client.
func NewRedisCache[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get retrieves a value from the cache
func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T
	val, err := c.client.Get(context.Background(), c.prefix+key).Result()
	if err != nil {
		c.misses.Add(1)
		return zero, false
	}

	var data T
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		// A corrupt entry behaves like a miss and gets overwritten on Set.
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	return data, true
}

// Set stores a value in the cache
func (c *RedisCache[T]) Set(key string, data T) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	c.client.Set(context.Background(), c.prefix+key, payload, c.ttl)
}

// Delete removes a key from the cache
func (c *RedisCache[T]) Delete(key string) {
	c.client.Del(context.Background(), c.prefix+key)
}

// Size reports the backing database's key count. With a dedicated logical
// database per deployment this matches the number of cached quotes.
func (c *RedisCache[T]) Size() int {
	n, err := c.client.DBSize(context.Background()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Stats returns hit and miss counts since startup.
func (c *RedisCache[T]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
