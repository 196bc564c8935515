package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// defaultIdleTTL is how long a key's bucket survives without requests.
const defaultIdleTTL = 10 * time.Minute

// MemoryLimiter keeps a token bucket per key in process memory. Buckets idle
// for longer than the TTL are swept on a later call.
type MemoryLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	lastSweep atomic.Int64
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewMemoryLimiter creates a MemoryLimiter. A non-positive burst defaults to 5.
func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	if burst <= 0 {
		burst = 5
	}
	l := &MemoryLimiter{rps: rate.Limit(rps), burst: burst, idleTTL: defaultIdleTTL, now: time.Now}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.sweep(now)
	e := l.get(key)
	e.lastSeen.Store(now.UnixNano())
	return e.limiter.AllowN(now, 1), nil
}

func (l *MemoryLimiter) get(key string) *memoryEntry {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*memoryEntry)
	}
	actual, _ := l.limiters.LoadOrStore(key, &memoryEntry{limiter: rate.NewLimiter(l.rps, l.burst)})
	return actual.(*memoryEntry)
}

// sweep drops idle buckets at most once per TTL.
func (l *MemoryLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idleTTL) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-l.idleTTL).UnixNano()
	l.limiters.Range(func(k, v any) bool {
		if v.(*memoryEntry).lastSeen.Load() < cutoff {
			l.limiters.Delete(k)
		}
		return true
	})
}

// size returns the number of tracked keys.
func (l *MemoryLimiter) size() int {
	n := 0
	l.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// RedisLimiter is a fixed-window counter shared by every replica.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisLimiter allows limit requests per key in each window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &RedisLimiter{client: client, limit: int64(limit), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "rate_limit:" + key
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return count <= l.limit, nil
}

// FailoverLimiter uses primary until it errors, then serves from fallback and
// retries primary once per retryAfter.
type FailoverLimiter struct {
	primary    Limiter
	fallback   Limiter
	logger     *zap.Logger
	retryAfter time.Duration

	down      atomic.Bool
	lastCheck atomic.Int64
}

// NewFailoverLimiter creates a FailoverLimiter that retries primary every minute.
func NewFailoverLimiter(primary, fallback Limiter, logger *zap.Logger) *FailoverLimiter {
	return &FailoverLimiter{primary: primary, fallback: fallback, logger: logger, retryAfter: time.Minute}
}

func (l *FailoverLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.down.Load() || time.Since(time.Unix(0, l.lastCheck.Load())) > l.retryAfter {
		allowed, err := l.primary.Allow(ctx, key)
		if err == nil {
			if l.down.CompareAndSwap(true, false) {
				l.logger.Info("primary rate limiter recovered")
			}
			return allowed, nil
		}
		if !l.down.Swap(true) {
			l.logger.Error("primary rate limiter failed, falling back to memory", zap.Error(err))
		}
		l.lastCheck.Store(time.Now().UnixNano())
	}
	return l.fallback.Allow(ctx, key)
}
