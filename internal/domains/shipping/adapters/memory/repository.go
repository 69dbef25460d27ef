package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sellerdesk/backoffice/internal/domains/shipping/domain"
	"github.com/sellerdesk/backoffice/internal/domains/shipping/ports"
)

// Repository is an in-memory shipment store used in tests and when no
// database is configured.
type Repository struct {
	mu        sync.Mutex
	shipments map[string]domain.Shipping
	now       func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		shipments: make(map[string]domain.Shipping),
		now:       time.Now,
	}
}

func (r *Repository) Save(_ context.Context, shipping *domain.Shipping) (*domain.Shipping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(*shipping)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
		stored.CreatedAt = r.now()
	} else if _, ok := r.shipments[stored.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	r.shipments[stored.ID] = stored

	out := clone(stored)
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Shipping, error) {
	return r.find(func(s domain.Shipping) bool { return s.ID == id })
}

func (r *Repository) GetByTrackingNumber(_ context.Context, trackingNumber string) (*domain.Shipping, error) {
	return r.find(func(s domain.Shipping) bool { return s.TrackingNumber == trackingNumber })
}

func (r *Repository) GetByOrderID(_ context.Context, orderID string) (*domain.Shipping, error) {
	return r.find(func(s domain.Shipping) bool { return s.OrderID == orderID })
}

func (r *Repository) List(_ context.Context, page, size int) ([]*domain.Shipping, error) {
	return r.list(func(domain.Shipping) bool { return true }, page, size), nil
}

func (r *Repository) ListBySeller(_ context.Context, sellerID string, page, size int) ([]*domain.Shipping, error) {
	return r.list(func(s domain.Shipping) bool { return s.SellerID == sellerID }, page, size), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shipments[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.shipments, id)
	return nil
}

func (r *Repository) find(match func(domain.Shipping) bool) (*domain.Shipping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.shipments {
		if match(stored) {
			out := clone(stored)
			return &out, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) list(keep func(domain.Shipping) bool, page, size int) []*domain.Shipping {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.Shipping, 0, len(r.shipments))
	for _, stored := range r.shipments {
		if !keep(stored) {
			continue
		}
		s := clone(stored)
		all = append(all, &s)
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

func clone(s domain.Shipping) domain.Shipping {
	out := s
	out.Events = append([]domain.Event(nil), s.Events...)
	return out
}
