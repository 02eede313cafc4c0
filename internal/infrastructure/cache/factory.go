package cache

import (
	"fmt"

	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SnapshotCacheFactory creates snapshot caches based on configuration
type SnapshotCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SnapshotCacheFactoryOption is a functional option for configuring the factory
type SnapshotCacheFactoryOption func(*SnapshotCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) SnapshotCacheFactoryOption {
	return func(f *SnapshotCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSnapshotCacheFactory creates a new factory
func NewSnapshotCacheFactory(cfg config.RedisConfig, opts ...SnapshotCacheFactoryOption) *SnapshotCacheFactory {
	f := &SnapshotCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory one (unless fallback is disabled).
func (f *SnapshotCacheFactory) CreateCache() (finance.SnapshotCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory snapshot cache")
		return NewInMemorySnapshotCache(f.redisConfig.SnapshotTTL), nil
	}

	store, err := NewRedisSnapshotCache(RedisConfig{
		Addr:     f.redisConfig.Addr,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
		TTL:      f.redisConfig.SnapshotTTL,
	})
	if err == nil {
		f.logger.Info("Using Redis snapshot cache", zap.String("addr", f.redisConfig.Addr))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for snapshot cache but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory snapshot cache. "+
		"Other processes will not see cached snapshots.",
		zap.Error(err))
	return NewInMemorySnapshotCache(f.redisConfig.SnapshotTTL), nil
}
