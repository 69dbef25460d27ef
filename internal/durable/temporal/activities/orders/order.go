package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/sellerdesk/backoffice/internal/domains/orders/application"
	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	orderports "github.com/sellerdesk/backoffice/internal/domains/orders/ports"
)

const (
	// PersistOrderActivityName runs the atomic stock reservation and insert.
	PersistOrderActivityName = "orders.activities.PersistOrder"
)

// Application error types carried across the workflow boundary. They mark
// failures that will not succeed on retry and let the caller rebuild the
// original typed error.
const (
	ErrTypeOrderValidation    = "OrderValidation"
	ErrTypeProductNotFound    = "ProductNotFound"
	ErrTypeInsufficientStock  = "InsufficientStock"
	ErrTypeOwnershipViolation = "OwnershipViolation"
)

// InsufficientStockDetails is the serialized payload of an
// InsufficientStock application error.
type InsufficientStockDetails struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}

// PersistOrderInput is the activity payload: a resolved seller plus the
// raw order request.
type PersistOrderInput struct {
	SellerID string
	Command  orderports.CreateOrderInput
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service *application.Service
}

func NewActivities(service *application.Service) *Activities {
	return &Activities{service: service}
}

// PersistOrder creates the order through the application service. Domain
// failures are surfaced as non-retryable application errors; anything else
// is left to the workflow retry policy.
func (a *Activities) PersistOrder(ctx context.Context, input PersistOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order persist activity not initialized")
		return nil, errors.New("order persist activity not initialized")
	}
	logger.Info("PersistOrder activity started", "sellerId", input.SellerID, "items", len(input.Command.Items))
	order, err := a.service.CreateOrderForSeller(ctx, input.SellerID, input.Command)
	if err != nil {
		logger.Error("PersistOrder activity failed", "sellerId", input.SellerID, "error", err)
		return nil, terminalOrRetryable(err)
	}
	logger.Info("PersistOrder activity completed", "orderId", order.ID, "orderNumber", order.OrderNumber)
	return order, nil
}

func terminalOrRetryable(err error) error {
	var notFound *orderports.ProductNotFoundError
	if errors.As(err, &notFound) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeProductNotFound, nil, notFound.ProductID)
	}
	var stock *orderports.InsufficientStockError
	if errors.As(err, &stock) {
		details := InsufficientStockDetails{
			ProductID:   stock.ProductID,
			ProductName: stock.ProductName,
			Available:   stock.Available,
			Requested:   stock.Requested,
		}
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, nil, details)
	}
	if errors.Is(err, orderports.ErrOwnershipViolation) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeOwnershipViolation, nil)
	}
	if errors.Is(err, application.ErrInvalidInput) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeOrderValidation, nil)
	}
	return err
}
