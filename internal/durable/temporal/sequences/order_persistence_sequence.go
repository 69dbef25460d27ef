package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	orderactivities "github.com/sellerdesk/backoffice/internal/durable/temporal/activities/orders"
)

// RunOrderPersistenceSequence executes the ordered set of activities needed
// to create an order. Transient storage failures are retried by the
// policy; domain failures abort immediately.
func RunOrderPersistenceSequence(ctx workflow.Context, input orderactivities.PersistOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order persistence sequence started", "sellerId", input.SellerID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				orderactivities.ErrTypeOrderValidation,
				orderactivities.ErrTypeProductNotFound,
				orderactivities.ErrTypeInsufficientStock,
				orderactivities.ErrTypeOwnershipViolation,
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var order domain.Order
	err := workflow.ExecuteActivity(ctx, orderactivities.PersistOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order persistence sequence failed", "sellerId", input.SellerID, "error", err)
		return nil, err
	}
	logger.Info("order persistence sequence completed", "orderId", order.ID, "orderNumber", order.OrderNumber)
	return &order, nil
}
