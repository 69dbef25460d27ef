// Package memory provides an in-memory seller repository for tests and
// DSN-less development.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/domain"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	mu      sync.RWMutex
	sellers map[string]domain.Seller
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{sellers: make(map[string]domain.Seller), now: time.Now}
}

func (r *Repository) Save(ctx context.Context, seller *domain.Seller) (*domain.Seller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *seller
	if stored.ID == "" {
		stored.ID = uuid.NewString()
		stored.CreatedAt = r.now().UTC()
	}
	r.sellers[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.sellers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := stored
	return &out, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.sellers {
		if strings.EqualFold(stored.Email, email) {
			out := stored
			return &out, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sellers[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.sellers, id)
	return nil
}
