package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	catalogports "github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
	"github.com/sellerdesk/backoffice/internal/domains/dashboard/ports"
	orderports "github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

const defaultCacheTTL = 30 * time.Second

// Service assembles dashboard stats from store-side aggregates, fronted by
// a short-lived cache. Cache failures fall back to the stores.
type Service struct {
	products catalogports.Repository
	orders   orderports.Repository
	identity sellerports.Identity
	cache    ports.Cache
	ttl      time.Duration
	logger   *slog.Logger
}

func NewService(products catalogports.Repository, orders orderports.Repository, identity sellerports.Identity, cache ports.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		products: products,
		orders:   orders,
		identity: identity,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// Stats returns the caller's aggregated dashboard numbers.
func (s *Service) Stats(ctx context.Context) (ports.Stats, error) {
	sellerID := ""
	if s.identity.EnforceOwnership() {
		resolved, err := s.identity.ResolveSellerID(ctx)
		if err != nil {
			return ports.Stats{}, err
		}
		sellerID = resolved
	}

	key := cacheKey(sellerID)
	if s.cache != nil {
		stats, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "dashboard cache read failed", "error", err)
		} else if ok {
			return stats, nil
		}
	}

	productStats, err := s.products.StatsBySeller(ctx, sellerID)
	if err != nil {
		return ports.Stats{}, fmt.Errorf("aggregate products: %w", err)
	}
	orderStats, err := s.orders.StatsBySeller(ctx, sellerID)
	if err != nil {
		return ports.Stats{}, fmt.Errorf("aggregate orders: %w", err)
	}

	stats := ports.Stats{
		TotalProducts:    productStats.Total,
		TotalOrders:      orderStats.TotalOrders,
		TotalRevenue:     orderStats.TotalRevenue,
		LowStockProducts: productStats.LowStock,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache write failed", "error", err)
		}
	}
	return stats, nil
}

func cacheKey(sellerID string) string {
	if sellerID == "" {
		return "dashboard:stats:all"
	}
	return "dashboard:stats:" + sellerID
}
