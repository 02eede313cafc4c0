package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "retailcore:snapshot:"

// RedisSnapshotCache implements finance.SnapshotCache using Redis.
// Snapshots are stored as JSON with a TTL so a missed invalidation heals on
// its own.
type RedisSnapshotCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisSnapshotCache connects to Redis and verifies the connection
func NewRedisSnapshotCache(cfg RedisConfig) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSnapshotCacheWithClient(client, "", cfg.TTL), nil
}

// NewRedisSnapshotCacheWithClient creates a cache on an existing client
func NewRedisSnapshotCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSnapshotCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisSnapshotCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisSnapshotCache) key(tenantID, customerID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + customerID.String()
}

// Get returns the cached snapshot. The bool is false on a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerFinancialSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, c.key(tenantID, customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot from cache: %w", err)
	}
	var snapshot finance.CustomerFinancialSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return &snapshot, true, nil
}

// Set stores a snapshot
func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot *finance.CustomerFinancialSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key(snapshot.TenantID, snapshot.CustomerID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot to cache: %w", err)
	}
	return nil
}

// Delete drops a cached snapshot
func (c *RedisSnapshotCache) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID, customerID)).Err(); err != nil {
		return fmt.Errorf("failed to evict snapshot: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

// Ensure RedisSnapshotCache implements finance.SnapshotCache
var _ finance.SnapshotCache = (*RedisSnapshotCache)(nil)
