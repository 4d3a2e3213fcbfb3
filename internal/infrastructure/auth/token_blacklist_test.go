package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBlacklist(t *testing.T) (*RedisTokenBlacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTokenBlacklist(client), mr
}

func TestRedisTokenBlacklist_RevokeExpires(t *testing.T) {
	bl, mr := newRedisBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Minute)

	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_NonPositiveTTLIsNoop(t *testing.T) {
	bl, mr := newRedisBlacklist(t)

	require.NoError(t, bl.Revoke(context.Background(), "jti-expired", 0))

	assert.False(t, mr.Exists(jtiKey("jti-expired")))
}

func TestRedisTokenBlacklist_RevokeUser(t *testing.T) {
	bl, _ := newRedisBlacklist(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Hour)
	revoked, err := bl.IsUserRevoked(ctx, "user-1", before)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err = bl.IsUserRevoked(ctx, "user-1", before)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsUserRevoked(ctx, "user-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = bl.IsUserRevoked(ctx, "user-2", before)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_BackendDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	bl := NewRedisTokenBlacklist(client)
	mr.Close()

	_, err = bl.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))
	revoked, err = bl.IsUserRevoked(ctx, "user-1", now.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = bl.IsUserRevoked(ctx, "user-1", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, revoked)
}
