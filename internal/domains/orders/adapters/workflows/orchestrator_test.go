package workflows

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	orderactivities "github.com/sellerdesk/backoffice/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/sellerdesk/backoffice/internal/durable/temporal/workflows/orders"
)

type fakeRun struct {
	client.WorkflowRun
	order domain.Order
	err   error
}

func (r *fakeRun) Get(_ context.Context, valuePtr interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(valuePtr.(*domain.Order)) = r.order
	return nil
}

type fakeTemporalClient struct {
	client.Client
	workflowType any
	workflowIDs  []string
	input        orderworkflows.OrderCreationWorkflowInput
	run          *fakeRun
}

func (c *fakeTemporalClient) ExecuteWorkflow(_ context.Context, options client.StartWorkflowOptions, workflowType interface{}, args ...interface{}) (client.WorkflowRun, error) {
	c.workflowType = workflowType
	c.workflowIDs = append(c.workflowIDs, options.ID)
	c.input = args[0].(orderworkflows.OrderCreationWorkflowInput)
	return c.run, nil
}

func TestTemporalCreateOrder_StartsWorkflowByRegisteredName(t *testing.T) {
	fake := &fakeTemporalClient{run: &fakeRun{order: domain.Order{ID: "order-1", SellerID: "seller-1"}}}
	orchestrator := NewTemporalOrderWorkflows(fake)

	input := ports.CreateOrderInput{
		CustomerName:    "Jane Doe",
		CustomerEmail:   "jane@example.com",
		ShippingAddress: "1 Main St",
		Items:           []ports.CreateOrderItemInput{{ProductID: "p-1", Quantity: 2}},
	}
	order, err := orchestrator.CreateOrder(context.Background(), "seller-1", input, "")
	require.NoError(t, err)
	require.Equal(t, "order-1", order.ID)

	// The worker registers the workflow under its custom name, so the
	// start request has to carry that name rather than a function
	// reference.
	require.Equal(t, orderworkflows.OrderCreationWorkflowName, fake.workflowType)
	require.Equal(t, "seller-1", fake.input.Command.SellerID)
	require.Equal(t, input, fake.input.Command.Command)
}

func TestTemporalCreateOrder_IdempotencyKeyPinsWorkflowID(t *testing.T) {
	fake := &fakeTemporalClient{run: &fakeRun{order: domain.Order{ID: "order-1"}}}
	orchestrator := NewTemporalOrderWorkflows(fake)

	input := ports.CreateOrderInput{CustomerName: "Jane Doe", Items: []ports.CreateOrderItemInput{{ProductID: "p-1", Quantity: 1}}}
	_, err := orchestrator.CreateOrder(context.Background(), "seller-1", input, "retry-key")
	require.NoError(t, err)
	_, err = orchestrator.CreateOrder(context.Background(), "seller-1", input, "retry-key")
	require.NoError(t, err)
	_, err = orchestrator.CreateOrder(context.Background(), "seller-1", input, "another-key")
	require.NoError(t, err)

	require.Len(t, fake.workflowIDs, 3)
	require.True(t, strings.HasPrefix(fake.workflowIDs[0], "order-creation-idem-"))
	require.Equal(t, fake.workflowIDs[0], fake.workflowIDs[1])
	require.NotEqual(t, fake.workflowIDs[0], fake.workflowIDs[2])
}

func TestTemporalCreateOrder_RebuildsTypedErrors(t *testing.T) {
	input := ports.CreateOrderInput{CustomerName: "Jane Doe", Items: []ports.CreateOrderItemInput{{ProductID: "p-1", Quantity: 2}}}

	fake := &fakeTemporalClient{run: &fakeRun{err: temporal.NewNonRetryableApplicationError(
		"insufficient stock",
		orderactivities.ErrTypeInsufficientStock,
		nil,
		orderactivities.InsufficientStockDetails{ProductID: "p-1", ProductName: "Keyboard", Available: 1, Requested: 2},
	)}}
	_, err := NewTemporalOrderWorkflows(fake).CreateOrder(context.Background(), "seller-1", input, "")
	var stockErr *ports.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "p-1", stockErr.ProductID)
	require.Equal(t, 1, stockErr.Available)
	require.Equal(t, 2, stockErr.Requested)

	fake = &fakeTemporalClient{run: &fakeRun{err: temporal.NewNonRetryableApplicationError(
		"product missing",
		orderactivities.ErrTypeProductNotFound,
		nil,
		"p-9",
	)}}
	_, err = NewTemporalOrderWorkflows(fake).CreateOrder(context.Background(), "seller-1", input, "")
	var notFound *ports.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "p-9", notFound.ProductID)

	fake = &fakeTemporalClient{run: &fakeRun{err: temporal.NewNonRetryableApplicationError(
		"not yours",
		orderactivities.ErrTypeOwnershipViolation,
		nil,
	)}}
	_, err = NewTemporalOrderWorkflows(fake).CreateOrder(context.Background(), "seller-1", input, "")
	require.ErrorIs(t, err, ports.ErrOwnershipViolation)
}
