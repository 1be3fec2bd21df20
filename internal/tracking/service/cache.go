package service

import (
	"context"
	"sync"
	"time"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// EventCache stores carrier lookups for a limited time.
type EventCache interface {
	// Get returns the cached info and true on a hit.
	Get(ctx context.Context, trackingCode string) (*domain.TrackingInfo, bool, error)
	// Set stores info for ttl.
	Set(ctx context.Context, trackingCode string, info *domain.TrackingInfo, ttl time.Duration) error
}

// memorySweepInterval is the minimum time between two expiry sweeps of MemoryEventCache.
const memorySweepInterval = time.Minute

type memoryCacheEntry struct {
	info      domain.TrackingInfo
	expiresAt time.Time
}

// MemoryEventCache is a process-local EventCache. Expired entries are dropped on read
// and swept from Set at most once per memorySweepInterval, so the map only holds codes
// looked up within roughly one TTL.
type MemoryEventCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryCacheEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryEventCache creates an empty MemoryEventCache.
func NewMemoryEventCache() *MemoryEventCache {
	return &MemoryEventCache{
		entries: make(map[string]memoryCacheEntry),
		now:     time.Now,
	}
}

// Get implements EventCache. Expired entries are evicted on read.
func (c *MemoryEventCache) Get(ctx context.Context, trackingCode string) (*domain.TrackingInfo, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[trackingCode]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, ok := c.entries[trackingCode]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, trackingCode)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return cloneInfo(&entry.info), true, nil
}

// Set implements EventCache.
func (c *MemoryEventCache) Set(
	ctx context.Context,
	trackingCode string,
	info *domain.TrackingInfo,
	ttl time.Duration,
) error {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= memorySweepInterval {
		c.sweepLocked(now)
	}

	c.entries[trackingCode] = memoryCacheEntry{
		info:      *cloneInfo(info),
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryEventCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryEventCache) sweepLocked(now time.Time) {
	for code, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, code)
		}
	}
	c.lastSweep = now
}

// cloneInfo copies info so callers never share the event slice with the cache.
func cloneInfo(info *domain.TrackingInfo) *domain.TrackingInfo {
	clone := *info
	clone.Events = append([]domain.TrackingEvent(nil), info.Events...)
	return &clone
}

var _ EventCache = (*MemoryEventCache)(nil)
