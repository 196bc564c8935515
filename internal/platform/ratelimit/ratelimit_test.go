package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryLimiter_BurstThenDeny(t *testing.T) {
	l := NewMemoryLimiter(0.001, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "u1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "u2")
	assert.True(t, ok, "keys are limited independently")
}

func TestMemoryLimiter_EvictsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(1, 1)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	l.lastSweep.Store(clock.UnixNano())
	ctx := context.Background()

	for _, key := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 3, l.size())

	clock = clock.Add(defaultIdleTTL / 2)
	_, _ = l.Allow(ctx, "10.0.0.1")

	clock = clock.Add(defaultIdleTTL/2 + time.Second)
	_, _ = l.Allow(ctx, "10.0.0.4")
	assert.Equal(t, 2, l.size(), "keys idle past the TTL are dropped")

	ok, _ := l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "an evicted key starts with a full bucket")
}

func TestRedisLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, 2, time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	s.FastForward(2 * time.Second)
	ok, err = l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok, "window expired")
}

func TestFailoverLimiter_FallsBackWhenRedisDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	defer client.Close()

	fallback := NewMemoryLimiter(0.001, 1)
	l := NewFailoverLimiter(NewRedisLimiter(client, 100, time.Second), fallback, zap.NewNop())
	ctx := context.Background()

	ok, err := l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	s.Close()

	ok, err = l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok, "first fallback request fits the burst")
	assert.True(t, l.down.Load())

	ok, err = l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "fallback limiter now enforces its own burst")
}
