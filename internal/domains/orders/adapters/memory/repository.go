// Package memory is an in-memory order store backed by the in-memory
// catalog, used in tests and when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	catalogmemory "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/ports"
)

type Repository struct {
	mu       sync.Mutex
	orders   map[string]domain.Order
	products *catalogmemory.Repository
	now      func() time.Time
}

// NewRepository builds an order store reserving stock against the given
// in-memory catalog.
func NewRepository(products *catalogmemory.Repository) *Repository {
	return &Repository{
		orders:   make(map[string]domain.Order),
		products: products,
		now:      time.Now,
	}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order, enforceOwnership bool) (*domain.Order, error) {
	snapshot, err := r.products.ReserveStock(ctx, order.Demands(), func(id string, product *catalogdomain.Product, requested int) error {
		if product == nil {
			return &ports.ProductNotFoundError{ProductID: id}
		}
		if enforceOwnership && product.SellerID != order.SellerID {
			return fmt.Errorf("%w: product %s", ports.ErrOwnershipViolation, id)
		}
		if product.Stock < requested {
			return &ports.InsufficientStockError{
				ProductID:   id,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   requested,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	if err := stored.PriceItems(func(productID string) (string, float64, bool) {
		p, ok := snapshot[productID]
		if !ok {
			return "", 0, false
		}
		return p.Name, p.Price, true
	}); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.orders[stored.ID] = stored

	out := clone(stored)
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := clone(stored)
	return &out, nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored.Status = order.Status
	stored.TrackingNumber = order.TrackingNumber
	stored.ShippedDate = order.ShippedDate
	stored.DeliveredDate = order.DeliveredDate
	stored.UpdatedAt = r.now()
	r.orders[order.ID] = stored

	out := clone(stored)
	return &out, nil
}

func (r *Repository) List(_ context.Context, page, size int) ([]*domain.Order, error) {
	return r.list(func(domain.Order) bool { return true }, page, size), nil
}

func (r *Repository) ListBySeller(_ context.Context, sellerID string, page, size int) ([]*domain.Order, error) {
	return r.list(func(o domain.Order) bool { return o.SellerID == sellerID }, page, size), nil
}

func (r *Repository) StatsBySeller(_ context.Context, sellerID string) (ports.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats ports.Stats
	for _, o := range r.orders {
		if sellerID != "" && o.SellerID != sellerID {
			continue
		}
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalAmount
	}
	return stats, nil
}

func (r *Repository) list(keep func(domain.Order) bool, page, size int) []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.Order, 0, len(r.orders))
	for _, stored := range r.orders {
		if !keep(stored) {
			continue
		}
		o := clone(stored)
		all = append(all, &o)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := (page - 1) * size
	if start >= len(all) {
		return nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func clone(o domain.Order) domain.Order {
	out := o
	out.Items = append([]domain.OrderItem(nil), o.Items...)
	return out
}
