package ports

import (
	"context"
	"errors"

	"github.com/sellerdesk/backoffice/internal/domains/shipping/domain"
)

var ErrNotFound = errors.New("shipping record not found")

// Repository persists shipment aggregates.
type Repository interface {
	// Save inserts the shipment when its ID is empty, otherwise updates it
	// in full, events included.
	Save(ctx context.Context, shipping *domain.Shipping) (*domain.Shipping, error)
	GetByID(ctx context.Context, id string) (*domain.Shipping, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipping, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Shipping, error)
	// List returns a page of shipments across all sellers, newest first.
	List(ctx context.Context, page, size int) ([]*domain.Shipping, error)
	// ListBySeller returns a page of the seller's shipments, newest first.
	ListBySeller(ctx context.Context, sellerID string, page, size int) ([]*domain.Shipping, error)
	Delete(ctx context.Context, id string) error
}
