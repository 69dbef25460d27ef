package ports

import (
	"context"

	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
)

// CreateOrderItemInput is one requested line of a new order.
type CreateOrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput carries the fields a caller supplies for a new order.
// Prices are resolved server side.
type CreateOrderInput struct {
	CustomerID      string                 `json:"customerId"`
	CustomerName    string                 `json:"customerName"`
	CustomerEmail   string                 `json:"customerEmail"`
	CustomerPhone   string                 `json:"customerPhone"`
	ShippingAddress string                 `json:"shippingAddress"`
	Items           []CreateOrderItemInput `json:"items"`
}

// WorkflowOrchestrator runs the order creation workflow for a resolved
// seller, either inline or through a durable workflow engine.
type WorkflowOrchestrator interface {
	// CreateOrder executes the workflow and returns the created order.
	// The idempotency key, when non-empty, collapses duplicate submissions
	// onto a single execution.
	CreateOrder(ctx context.Context, sellerID string, in CreateOrderInput, idempotencyKey string) (*domain.Order, error)
}
