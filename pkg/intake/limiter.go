package intake

import (
	"context"
	"fmt"
	"sync"
	"time"

	backend "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Default request budget per client.
const (
	DefaultRateLimit  = 5
	DefaultRateWindow = 15 * time.Minute
)

// MemoryLimiter keeps one token bucket per key in process memory. Each bucket
// holds limit tokens and refills one every window/limit.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// pruneAt is the bucket count above which idle buckets are dropped.
const pruneAt = 1024

// NewMemoryLimiter allows limit hits per key inside window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow implements ports.RateLimiter.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok {
		if len(m.buckets) >= pruneAt {
			m.prune(now)
		}
		b = &bucket{lim: rate.NewLimiter(rate.Every(m.window/time.Duration(m.limit)), m.limit)}
		m.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1), nil
}

// prune drops buckets idle for a full window; they would be full again anyway.
func (m *MemoryLimiter) prune(now time.Time) {
	for k, b := range m.buckets {
		if now.Sub(b.seen) > m.window {
			delete(m.buckets, k)
		}
	}
}

// RedisLimiter counts hits in a fixed window shared by every replica.
type RedisLimiter struct {
	client backend.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit hits per key inside window. Keys live under prefix.
func NewRedisLimiter(client backend.UniversalClient, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow implements ports.RateLimiter. The window starts at the first hit.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := r.prefix + "ratelimit:" + key
	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count request: %w", err)
	}
	if n == 1 {
		if err := r.client.PExpire(ctx, k, r.window).Err(); err != nil {
			return false, fmt.Errorf("failed to start window: %w", err)
		}
	}
	return n <= int64(r.limit), nil
}
