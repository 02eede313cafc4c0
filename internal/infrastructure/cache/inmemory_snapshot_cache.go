package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/google/uuid"
)

type snapshotKey struct {
	tenantID   uuid.UUID
	customerID uuid.UUID
}

type snapshotEntry struct {
	snapshot  finance.CustomerFinancialSnapshot
	expiresAt time.Time
}

// InMemorySnapshotCache implements finance.SnapshotCache with a map.
// It is used for tests and single-process runs without Redis.
type InMemorySnapshotCache struct {
	mu      sync.RWMutex
	entries map[snapshotKey]snapshotEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemorySnapshotCache creates an in-memory cache. A zero ttl keeps
// entries until they are overwritten or deleted.
func NewInMemorySnapshotCache(ttl time.Duration) *InMemorySnapshotCache {
	return &InMemorySnapshotCache{
		entries: make(map[snapshotKey]snapshotEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached snapshot
func (c *InMemorySnapshotCache) Get(_ context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerFinancialSnapshot, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[snapshotKey{tenantID, customerID}]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, snapshotKey{tenantID, customerID})
		c.mu.Unlock()
		return nil, false, nil
	}
	snapshot := e.snapshot
	return &snapshot, true, nil
}

// Set stores a copy of snapshot
func (c *InMemorySnapshotCache) Set(_ context.Context, snapshot *finance.CustomerFinancialSnapshot) error {
	e := snapshotEntry{snapshot: *snapshot}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[snapshotKey{snapshot.TenantID, snapshot.CustomerID}] = e
	c.mu.Unlock()
	return nil
}

// Delete drops a cached snapshot
func (c *InMemorySnapshotCache) Delete(_ context.Context, tenantID, customerID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, snapshotKey{tenantID, customerID})
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included
func (c *InMemorySnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemorySnapshotCache implements finance.SnapshotCache
var _ finance.SnapshotCache = (*InMemorySnapshotCache)(nil)
