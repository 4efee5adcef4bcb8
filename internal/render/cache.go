package render

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const defaultMemoSize = 4096

// Memo caches successful renders in process. Failures are never cached.
// When full, the oldest entry is evicted.
type Memo struct {
	next    Renderer
	maxSize int

	mu      sync.RWMutex
	entries map[string]string
	order   []string
}

// NewMemo wraps next with an in-process cache holding up to maxSize entries.
func NewMemo(next Renderer, maxSize int) *Memo {
	if maxSize <= 0 {
		maxSize = defaultMemoSize
	}
	return &Memo{
		next:    next,
		maxSize: maxSize,
		entries: make(map[string]string),
	}
}

func (m *Memo) Render(ctx context.Context, expr string) (string, error) {
	m.mu.RLock()
	markup, ok := m.entries[expr]
	m.mu.RUnlock()
	if ok {
		return markup, nil
	}

	markup, err := m.next.Render(ctx, expr)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[expr]; !ok {
		if len(m.order) >= m.maxSize {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.entries, oldest)
		}
		m.order = append(m.order, expr)
	}
	m.entries[expr] = markup
	return markup, nil
}

// Len returns the number of cached entries.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memo) HealthCheck(ctx context.Context) error {
	if hc, ok := m.next.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

const redisKeyPrefix = "flash:mathml:"

// RedisCache shares successful renders between instances through Redis.
// Redis errors are logged and treated as cache misses.
type RedisCache struct {
	next   Renderer
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps next with a Redis-backed cache. A zero ttl keeps entries
// until evicted by Redis.
func NewRedisCache(next Renderer, client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{next: next, client: client, ttl: ttl}
}

func (c *RedisCache) Render(ctx context.Context, expr string) (string, error) {
	key := CacheKey(expr)

	markup, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return markup, nil
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("render cache read failed", "error", err)
	}

	markup, err = c.next.Render(ctx, expr)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, markup, c.ttl).Err(); err != nil {
		slog.Warn("render cache write failed", "error", err)
	}
	return markup, nil
}

func (c *RedisCache) HealthCheck(ctx context.Context) error {
	if hc, ok := c.next.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// CacheKey returns the Redis key for an expression.
func CacheKey(expr string) string {
	sum := blake2b.Sum256([]byte(expr))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}
