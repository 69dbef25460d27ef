// Package rediscache keeps dashboard stats hot in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sellerdesk/backoffice/internal/domains/dashboard/ports"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) (ports.Stats, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.Stats{}, false, nil
	}
	if err != nil {
		return ports.Stats{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var stats ports.Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return ports.Stats{}, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return stats, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, stats ports.Stats, ttl time.Duration) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
