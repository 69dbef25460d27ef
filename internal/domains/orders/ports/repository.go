package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrTransient marks storage failures worth retrying: serialization
	// conflicts, deadlocks, dropped connections. The order was not created.
	ErrTransient = errors.New("transient storage failure")
	// ErrOwnershipViolation is returned when an ordered product belongs to
	// another seller and ownership enforcement is on.
	ErrOwnershipViolation = errors.New("product belongs to another seller")
)

// ProductNotFoundError is returned when an ordered product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError is returned when a product cannot cover the
// requested quantity. Stock is left untouched for the whole order.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (%s): %d available, %d requested",
		e.ProductID, e.ProductName, e.Available, e.Requested)
}

// Stats aggregates a seller's orders in the store.
type Stats struct {
	TotalOrders  int64
	TotalRevenue float64
}

// Repository persists order aggregates. Create is the transactional heart:
// it must validate and decrement stock and insert the order atomically.
type Repository interface {
	// Create prices the order from current catalog rows, decrements stock
	// and persists the order in one transaction. With enforceOwnership set
	// every ordered product must belong to the order's seller. On any item
	// failure nothing is changed and a ProductNotFoundError,
	// InsufficientStockError or ErrOwnershipViolation is returned.
	Create(ctx context.Context, order *domain.Order, enforceOwnership bool) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Update persists status, tracking number and lifecycle dates.
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// List returns a page of orders across all sellers, newest first.
	List(ctx context.Context, page, size int) ([]*domain.Order, error)
	// ListBySeller returns a page of the seller's orders, newest first.
	ListBySeller(ctx context.Context, sellerID string, page, size int) ([]*domain.Order, error)
	// StatsBySeller aggregates counts and revenue in the store. An empty
	// sellerID aggregates over all sellers.
	StatsBySeller(ctx context.Context, sellerID string) (Stats, error)
}
