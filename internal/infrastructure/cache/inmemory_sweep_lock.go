package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ngo-pm/backend/internal/application/deadline"
)

// InMemorySweepLock is a process-local lock with the same expiry semantics
// as RedisSweepLock. It does not coordinate across replicas.
type InMemorySweepLock struct {
	mu        sync.Mutex
	ttl       time.Duration
	holder    uint64
	expiresAt time.Time
	nextToken uint64
	now       func() time.Time
}

// NewInMemorySweepLock creates a lock held for at most ttl
func NewInMemorySweepLock(ttl time.Duration) *InMemorySweepLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InMemorySweepLock{ttl: ttl, now: time.Now}
}

// TryAcquire implements deadline.SweepLock
func (l *InMemorySweepLock) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.holder != 0 && now.Before(l.expiresAt) {
		return nil, false, nil
	}

	l.nextToken++
	token := l.nextToken
	l.holder = token
	l.expiresAt = now.Add(l.ttl)

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.holder != token || !l.now().Before(l.expiresAt) {
			return ErrLockNotHeld
		}
		l.holder = 0
		return nil
	}
	return release, true, nil
}

var _ deadline.SweepLock = (*InMemorySweepLock)(nil)
