package syncer

import (
	"sync"
	"time"

	"github.com/ndedov/go-stash-sync/models"
)

// DeltaCache is a TTL-bounded cache for derived entity views, keyed by
// owner. It backs the recent-activity listing so repeated polling does not
// hit the store on every call.
//
// The cache is deliberately explicit state with an injectable clock; it is
// invalidated for an owner whenever a batch mutates that owner's data.
type DeltaCache struct {
	clock Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

type cacheKey struct {
	owner  int64
	family string
}

type cacheEntry struct {
	entities  []models.SyncEntity
	expiresAt time.Time
}

// NewDeltaCache constructs a DeltaCache with the given entry lifetime.
// A non-positive ttl disables caching: Get never hits.
func NewDeltaCache(ttl time.Duration, clock Clock) *DeltaCache {
	return &DeltaCache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

// Get returns the cached view for the owner and family, if present and not
// expired. The returned slice is a copy; callers may reorder or truncate it
// without affecting later readers.
func (c *DeltaCache) Get(owner int64, family string) ([]models.SyncEntity, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey{owner: owner, family: family}]
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}

	view := make([]models.SyncEntity, len(entry.entities))
	copy(view, entry.entities)
	return view, true
}

// Put stores a view for the owner and family with the configured TTL.
func (c *DeltaCache) Put(owner int64, family string, entities []models.SyncEntity) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey{owner: owner, family: family}] = cacheEntry{
		entities:  entities,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Invalidate drops any cached view for the owner and family. Called after a
// batch mutates the owner's data so the next read sees fresh state.
func (c *DeltaCache) Invalidate(owner int64, family string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, cacheKey{owner: owner, family: family})
}

// Sweep removes all expired entries and returns how many were dropped.
// Invoked periodically by the cache-janitor worker.
func (c *DeltaCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	dropped := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			dropped++
		}
	}

	return dropped
}
