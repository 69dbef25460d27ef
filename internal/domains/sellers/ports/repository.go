package ports

import (
	"context"
	"errors"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/domain"
)

var (
	ErrNotFound   = errors.New("seller not found")
	ErrEmailTaken = errors.New("seller email already registered")
)

// Repository persists seller records.
type Repository interface {
	Save(ctx context.Context, seller *domain.Seller) (*domain.Seller, error)
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	GetByEmail(ctx context.Context, email string) (*domain.Seller, error)
	Delete(ctx context.Context, id string) error
}
