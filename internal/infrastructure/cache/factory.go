package cache

import (
	"fmt"
	"time"

	"github.com/ngo-pm/backend/internal/application/deadline"
	"github.com/ngo-pm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SweepLockFactory creates sweep locks based on configuration
type SweepLockFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// SweepLockFactoryOption is a functional option for configuring the factory
type SweepLockFactoryOption func(*SweepLockFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SweepLockFactoryOption {
	return func(f *SweepLockFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to a process-local lock
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) SweepLockFactoryOption {
	return func(f *SweepLockFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRedisClient reuses an existing client instead of dialing one
func WithRedisClient(client *redis.Client) SweepLockFactoryOption {
	return func(f *SweepLockFactory) {
		f.client = client
	}
}

// NewSweepLockFactory creates a new factory
func NewSweepLockFactory(cfg config.RedisConfig, ttl time.Duration, opts ...SweepLockFactoryOption) *SweepLockFactory {
	f := &SweepLockFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLock returns a Redis lock when Redis is reachable and falls back to
// an in-memory lock otherwise, if allowed. The returned client is nil for
// the in-memory lock and must be closed by the caller otherwise.
func (f *SweepLockFactory) CreateLock() (deadline.SweepLock, *redis.Client, error) {
	client := f.client
	if client == nil {
		var err error
		client, err = NewRedisClient(f.redisConfig)
		if err != nil {
			if !f.allowInMemoryFallback {
				return nil, nil, fmt.Errorf("Redis required for sweep lock but unavailable: %w", err)
			}
			f.logger.Warn("Redis unavailable, falling back to in-memory sweep lock. "+
				"Replicas will not coordinate sweeps.",
				zap.Error(err),
			)
			return NewInMemorySweepLock(f.ttl), nil, nil
		}
	}

	f.logger.Info("using Redis sweep lock", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisSweepLock(client, DefaultSweepLockKey, f.ttl), client, nil
}
