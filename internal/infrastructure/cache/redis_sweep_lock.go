package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/application/deadline"
	"github.com/redis/go-redis/v9"
)

// DefaultSweepLockKey is the key shared by every replica
const DefaultSweepLockKey = "ngo-pm:deadline:sweep-lock"

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSweepLock is a SET NX PX lock. Each acquisition writes a random token
// and release only deletes the key while it still holds that token, so a
// replica whose lock expired cannot free a lock held by someone else.
type RedisSweepLock struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisSweepLock creates a lock on key held for at most ttl
func NewRedisSweepLock(client redis.UniversalClient, key string, ttl time.Duration) *RedisSweepLock {
	if key == "" {
		key = DefaultSweepLockKey
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisSweepLock{client: client, key: key, ttl: ttl}
}

// TryAcquire implements deadline.SweepLock
func (l *RedisSweepLock) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int64()
		if err != nil {
			return fmt.Errorf("release sweep lock: %w", err)
		}
		if n == 0 {
			return ErrLockNotHeld
		}
		return nil
	}
	return release, true, nil
}

// Key returns the Redis key guarded by the lock
func (l *RedisSweepLock) Key() string {
	return l.key
}

var _ deadline.SweepLock = (*RedisSweepLock)(nil)
