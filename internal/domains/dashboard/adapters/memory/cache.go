// Package memory is the in-process dashboard cache used when Redis is not
// configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sellerdesk/backoffice/internal/domains/dashboard/ports"
)

type entry struct {
	stats     ports.Stats
	expiresAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) (ports.Stats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries[key]
	if !ok {
		return ports.Stats{}, false, nil
	}
	if c.now().After(cached.expiresAt) {
		delete(c.entries, key)
		return ports.Stats{}, false, nil
	}
	return cached.stats, true, nil
}

func (c *Cache) Set(_ context.Context, key string, stats ports.Stats, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{stats: stats, expiresAt: c.now().Add(ttl)}
	return nil
}
