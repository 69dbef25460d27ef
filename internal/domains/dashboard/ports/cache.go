package ports

import (
	"context"
	"time"
)

// Stats is the aggregated back office summary shown on the dashboard.
// Aggregation happens in the store, never by paging rows through the app.
type Stats struct {
	TotalProducts    int64   `json:"totalProducts"`
	TotalOrders      int64   `json:"totalOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
	LowStockProducts int64   `json:"lowStockProducts"`
}

// Cache keeps computed stats hot for a short window. A miss returns
// ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (Stats, bool, error)
	Set(ctx context.Context, key string, stats Stats, ttl time.Duration) error
}
