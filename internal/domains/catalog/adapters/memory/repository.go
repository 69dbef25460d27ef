package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
)

// Repository is an in-memory product store used in tests and when no
// database is configured.
type Repository struct {
	mu       sync.Mutex
	products map[string]domain.Product
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		products: make(map[string]domain.Product),
		now:      time.Now,
	}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *product
	if stored.ID == "" {
		stored.ID = uuid.NewString()
		stored.CreatedAt = r.now()
	} else if _, ok := r.products[stored.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	stored.UpdatedAt = r.now()
	r.products[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := stored
	return &out, nil
}

func (r *Repository) List(_ context.Context, page, size int) ([]*domain.Product, error) {
	return r.list(func(domain.Product) bool { return true }, page, size), nil
}

func (r *Repository) ListBySeller(_ context.Context, sellerID string, page, size int) ([]*domain.Product, error) {
	return r.list(func(p domain.Product) bool { return p.SellerID == sellerID }, page, size), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) StatsBySeller(_ context.Context, sellerID string) (ports.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats ports.Stats
	for _, p := range r.products {
		if sellerID != "" && p.SellerID != sellerID {
			continue
		}
		stats.Total++
		if p.Stock < domain.LowStockThreshold {
			stats.LowStock++
		}
	}
	return stats, nil
}

// ReserveStock atomically checks and decrements stock for every demanded
// product while holding the store lock. On any failure nothing is changed.
// The returned snapshot carries the pre-decrement products for pricing.
func (r *Repository) ReserveStock(_ context.Context, demands map[string]int, check func(id string, product *domain.Product, requested int) error) (map[string]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]*domain.Product, len(demands))
	for id, qty := range demands {
		stored, ok := r.products[id]
		if !ok {
			if err := check(id, nil, qty); err != nil {
				return nil, err
			}
			return nil, ports.ErrNotFound
		}
		p := stored
		if err := check(id, &p, qty); err != nil {
			return nil, err
		}
		snapshot[id] = &p
	}
	for id, qty := range demands {
		stored := r.products[id]
		stored.Stock -= qty
		stored.UpdatedAt = r.now()
		r.products[id] = stored
	}
	return snapshot, nil
}

func (r *Repository) list(keep func(domain.Product) bool, page, size int) []*domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.Product, 0, len(r.products))
	for _, stored := range r.products {
		if !keep(stored) {
			continue
		}
		p := stored
		all = append(all, &p)
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
