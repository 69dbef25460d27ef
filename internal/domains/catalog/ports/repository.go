package ports

import (
	"context"
	"errors"

	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("product not found")

// Stats summarises a seller's catalog for reporting.
type Stats struct {
	Total    int64
	LowStock int64
}

// Repository persists product aggregates.
type Repository interface {
	// Save inserts the product when its ID is empty, otherwise updates it.
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns a page of products across all sellers, newest first.
	List(ctx context.Context, page, size int) ([]*domain.Product, error)
	// ListBySeller returns a page of the seller's products, newest first.
	ListBySeller(ctx context.Context, sellerID string, page, size int) ([]*domain.Product, error)
	Delete(ctx context.Context, id string) error
	// StatsBySeller aggregates counts in the store. An empty sellerID
	// aggregates over all sellers.
	StatsBySeller(ctx context.Context, sellerID string) (Stats, error)
}
