package cache

import (
	"context"
	"sync"
	"time"

	"github.com/smartsplit/expense-splitter/internal/models"
)

type memEntry struct {
	entries []models.BalanceEntry
	expires time.Time
}

// InMemoryCache is the single-process fallback used when no redis address is
// configured, and in tests.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]memEntry
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{items: make(map[string]memEntry)}
}

func (c *InMemoryCache) GetGroupBalances(_ context.Context, groupID string) ([]models.BalanceEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[groupID]
	if !ok || time.Now().After(it.expires) {
		return nil, false
	}
	return it.entries, true
}

func (c *InMemoryCache) SetGroupBalances(_ context.Context, groupID string, entries []models.BalanceEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[groupID] = memEntry{entries: entries, expires: time.Now().Add(entryTTL)}
}

func (c *InMemoryCache) Invalidate(_ context.Context, groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, groupID)
}
