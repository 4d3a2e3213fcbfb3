package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ngo-pm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSweepLock(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire fails while held", func(t *testing.T) {
		mr, client := newTestRedis(t)
		lock := NewRedisSweepLock(client, "", time.Minute)

		release, ok, err := lock.TryAcquire(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, mr.Exists(DefaultSweepLockKey))
		assert.Equal(t, time.Minute, mr.TTL(DefaultSweepLockKey))

		_, ok, err = NewRedisSweepLock(client, "", time.Minute).TryAcquire(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, release(ctx))
		assert.False(t, mr.Exists(DefaultSweepLockKey))

		_, ok, err = lock.TryAcquire(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired holder cannot release a new holder", func(t *testing.T) {
		mr, client := newTestRedis(t)
		lock := NewRedisSweepLock(client, "sweep", time.Second)

		staleRelease, ok, err := lock.TryAcquire(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Second)

		_, ok, err = lock.TryAcquire(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		assert.ErrorIs(t, staleRelease(ctx), ErrLockNotHeld)
		assert.True(t, mr.Exists("sweep"))
	})

	t.Run("backend error is returned", func(t *testing.T) {
		mr, client := newTestRedis(t)
		mr.Close()

		_, ok, err := NewRedisSweepLock(client, "", time.Minute).TryAcquire(ctx)
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestInMemorySweepLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lock := NewInMemorySweepLock(time.Minute)
	lock.now = func() time.Time { return now }

	release, ok, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release(ctx))
	assert.ErrorIs(t, release(ctx), ErrLockNotHeld)

	_, ok, _ = lock.TryAcquire(ctx)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = lock.TryAcquire(ctx)
	assert.True(t, ok, "expired lock can be taken over")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = lock.TryAcquire(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepLockFactory(t *testing.T) {
	t.Run("uses provided redis client", func(t *testing.T) {
		_, client := newTestRedis(t)
		lock, c, err := NewSweepLockFactory(config.RedisConfig{}, time.Minute, WithRedisClient(client)).CreateLock()
		require.NoError(t, err)
		assert.IsType(t, &RedisSweepLock{}, lock)
		assert.Same(t, client, c)
	})

	t.Run("dials configured redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.RedisConfig{Host: mr.Host(), Port: atoiPort(t, mr.Port())}
		lock, c, err := NewSweepLockFactory(cfg, time.Minute).CreateLock()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &RedisSweepLock{}, lock)
	})

	t.Run("falls back to memory", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
		lock, c, err := NewSweepLockFactory(cfg, time.Minute, WithLogger(zap.New(core))).CreateLock()
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.IsType(t, &InMemorySweepLock{}, lock)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("fallback disabled", func(t *testing.T) {
		cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
		_, _, err := NewSweepLockFactory(cfg, time.Minute, WithInMemoryFallback(false)).CreateLock()
		assert.Error(t, err)
	})
}

func atoiPort(t *testing.T, s string) int {
	t.Helper()
	port, err := strconv.Atoi(s)
	require.NoError(t, err)
	return port
}
