// Package workflows starts the order creation workflow, either inline or
// on a Temporal cluster.
package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/sellerdesk/backoffice/internal/domains/orders/application"
	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	orderactivities "github.com/sellerdesk/backoffice/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/sellerdesk/backoffice/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.OrderCreationTaskQueue}
}

// CreateOrder starts the Temporal workflow that reserves stock and persists
// the order, waiting for its result.
func (o *TemporalOrderWorkflows) CreateOrder(ctx context.Context, sellerID string, in ports.CreateOrderInput, idempotencyKey string) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildOrderCreationWorkflowID(idempotencyKey, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	input := orderworkflows.OrderCreationWorkflowInput{
		Command: orderactivities.PersistOrderInput{SellerID: sellerID, Command: in},
		TraceID: traceComponent,
	}
	// Started by registered name: the worker registers the workflow under
	// OrderCreationWorkflowName, not its function name.
	run, err := o.client.ExecuteWorkflow(ctx, options, orderworkflows.OrderCreationWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(idempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var order domain.Order
			if err := existingRun.Get(ctx, &order); err != nil {
				return nil, unwrapWorkflowError(err)
			}
			return &order, nil
		}
		return nil, err
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, unwrapWorkflowError(err)
	}
	return &order, nil
}

// InlineOrderWorkflows executes the service directly without Temporal,
// useful for tests or dev fallbacks.
type InlineOrderWorkflows struct {
	service *application.Service
}

// NewInlineOrderWorkflows wraps the orders service for synchronous execution.
func NewInlineOrderWorkflows(service *application.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

// CreateOrder delegates to the application service without durable
// orchestration. Idempotency keys are not honored inline.
func (o *InlineOrderWorkflows) CreateOrder(ctx context.Context, sellerID string, in ports.CreateOrderInput, _ string) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	return o.service.CreateOrderForSeller(ctx, sellerID, in)
}

// unwrapWorkflowError rebuilds the typed domain errors an activity carried
// across the workflow boundary, so transport mapping stays uniform between
// inline and durable execution.
func unwrapWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case orderactivities.ErrTypeOrderValidation:
		return fmt.Errorf("%w: %s", application.ErrInvalidInput, appErr.Message())
	case orderactivities.ErrTypeProductNotFound:
		var productID string
		if detailsErr := appErr.Details(&productID); detailsErr != nil {
			return err
		}
		return &ports.ProductNotFoundError{ProductID: productID}
	case orderactivities.ErrTypeOwnershipViolation:
		return fmt.Errorf("%w: %s", ports.ErrOwnershipViolation, appErr.Message())
	case orderactivities.ErrTypeInsufficientStock:
		var details orderactivities.InsufficientStockDetails
		if detailsErr := appErr.Details(&details); detailsErr != nil {
			return err
		}
		return &ports.InsufficientStockError{
			ProductID:   details.ProductID,
			ProductName: details.ProductName,
			Available:   details.Available,
			Requested:   details.Requested,
		}
	}
	return err
}

func buildOrderCreationWorkflowID(idempotencyKey, traceComponent string) string {
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		return fmt.Sprintf("order-creation-idem-%s", hashIdempotencyKey(key))
	}
	return fmt.Sprintf("order-creation-%d-%s", time.Now().UnixNano(), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
