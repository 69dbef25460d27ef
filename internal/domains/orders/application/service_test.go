package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalogmemory "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	ordersmemory "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/memory"
	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	sellersapp "github.com/sellerdesk/backoffice/internal/domains/sellers/application"
	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

const sellerID = "seller-1"

func newFixture(t *testing.T) (*Service, *catalogmemory.Repository) {
	t.Helper()
	products := catalogmemory.NewRepository()
	repo := ordersmemory.NewRepository(products)
	svc := NewService(repo, sellersapp.NewSharedSellerIdentity(sellerID))
	return svc, products
}

func seedProduct(t *testing.T, products *catalogmemory.Repository, owner, name string, price float64, stock int) *catalogdomain.Product {
	t.Helper()
	p, err := products.Save(context.Background(), &catalogdomain.Product{
		SellerID: owner,
		Name:     name,
		Price:    price,
		Stock:    stock,
		Active:   true,
	})
	require.NoError(t, err)
	return p
}

func TestCreateOrder_Success(t *testing.T) {
	svc, products := newFixture(t)
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)
	mouse := seedProduct(t, products, sellerID, "Mouse", 19.90, 5)

	order, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical Way",
		Items: []ports.CreateOrderItemInput{
			{ProductID: keyboard.ID, Quantity: 2},
			{ProductID: mouse.ID, Quantity: 1},
		},
	})

	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.True(t, len(order.OrderNumber) > 4 && order.OrderNumber[:4] == "ORD-")
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, sellerID, order.SellerID)
	require.InDelta(t, 2*49.90+19.90, order.TotalAmount, 0.001)
	require.Equal(t, "Keyboard", order.Items[0].ProductName)
	require.InDelta(t, 99.80, order.Items[0].TotalPrice, 0.001)

	stored, err := products.GetByID(context.Background(), keyboard.ID)
	require.NoError(t, err)
	require.Equal(t, 8, stored.Stock)
	stored, err = products.GetByID(context.Background(), mouse.ID)
	require.NoError(t, err)
	require.Equal(t, 4, stored.Stock)
}

func TestCreateOrder_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	svc, products := newFixture(t)
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)
	mouse := seedProduct(t, products, sellerID, "Mouse", 19.90, 2)

	_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items: []ports.CreateOrderItemInput{
			{ProductID: keyboard.ID, Quantity: 1},
			{ProductID: mouse.ID, Quantity: 3},
		},
	})

	var stockErr *ports.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, mouse.ID, stockErr.ProductID)
	require.Equal(t, "Mouse", stockErr.ProductName)
	require.Equal(t, 2, stockErr.Available)
	require.Equal(t, 3, stockErr.Requested)

	stored, err := products.GetByID(context.Background(), keyboard.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.Stock)

	orders, err := svc.ListOrders(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	svc, products := newFixture(t)
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)

	_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items: []ports.CreateOrderItemInput{
			{ProductID: keyboard.ID, Quantity: 1},
			{ProductID: "missing", Quantity: 1},
		},
	})

	var notFound *ports.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "missing", notFound.ProductID)

	stored, err := products.GetByID(context.Background(), keyboard.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.Stock)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, products := newFixture(t)
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)

	_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 0}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: domain.MaxItemQuantity + 1}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		Items: []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	stored, err := products.GetByID(context.Background(), keyboard.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.Stock)
}

func TestCreateOrder_OwnershipEnforced(t *testing.T) {
	products := catalogmemory.NewRepository()
	repo := ordersmemory.NewRepository(products)
	svc := NewService(repo, sellersapp.NewTokenIdentity())
	foreign := seedProduct(t, products, "other-seller", "Keyboard", 49.90, 10)

	ctx := sellerports.ContextWithSellerID(context.Background(), sellerID)
	_, err := svc.CreateOrder(ctx, ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: foreign.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ports.ErrOwnershipViolation)

	stored, err := products.GetByID(context.Background(), foreign.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.Stock)
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	products := catalogmemory.NewRepository()
	repo := ordersmemory.NewRepository(products)
	svc := NewService(repo, sellersapp.NewTokenIdentity())
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)

	_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, sellerports.ErrUnauthenticated)
}

func TestCreateOrder_LastUnitHasExactlyOneWinner(t *testing.T) {
	svc, products := newFixture(t)
	rare := seedProduct(t, products, sellerID, "Rare Widget", 99.00, 1)

	const racers = 16
	var wg sync.WaitGroup
	results := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
				CustomerName: "Ada Lovelace",
				Items:        []ports.CreateOrderItemInput{{ProductID: rare.ID, Quantity: 1}},
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var wins, stockFailures int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var stockErr *ports.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		stockFailures++
	}
	require.Equal(t, 1, wins)
	require.Equal(t, racers-1, stockFailures)
	stored, err := products.GetByID(context.Background(), rare.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.Stock)
}

// flakyRepo fails creation with a transient error a fixed number of times
// before delegating.
type flakyRepo struct {
	ports.Repository
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *flakyRepo) Create(ctx context.Context, order *domain.Order, enforceOwnership bool) (*domain.Order, error) {
	f.mu.Lock()
	f.attempts++
	fail := f.attempts <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, ports.ErrTransient
	}
	return f.Repository.Create(ctx, order, enforceOwnership)
}

func TestCreateOrder_RetriesTransientFailures(t *testing.T) {
	products := catalogmemory.NewRepository()
	repo := &flakyRepo{Repository: ordersmemory.NewRepository(products), failures: 2}
	svc := NewService(repo, sellersapp.NewSharedSellerIdentity(sellerID), WithRetry(3, time.Millisecond))
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)

	order, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})

	require.NoError(t, err)
	require.Equal(t, 3, repo.attempts)
	require.NotNil(t, order)
}

func TestCreateOrder_GivesUpAfterMaxAttempts(t *testing.T) {
	products := catalogmemory.NewRepository()
	repo := &flakyRepo{Repository: ordersmemory.NewRepository(products), failures: 10}
	svc := NewService(repo, sellersapp.NewSharedSellerIdentity(sellerID), WithRetry(3, time.Millisecond))
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)

	_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})

	require.ErrorIs(t, err, ports.ErrTransient)
	require.Equal(t, 3, repo.attempts)
}

func TestUpdateStatus_WalksTheLifecycle(t *testing.T) {
	svc, products := newFixture(t)
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)
	order, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	order, err = svc.UpdateStatus(context.Background(), order.ID, "processing", "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, order.Status)

	order, err = svc.UpdateStatus(context.Background(), order.ID, "Shipped", "TRACK12345")
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, order.Status)
	require.Equal(t, "TRACK12345", order.TrackingNumber)
	require.NotNil(t, order.ShippedDate)

	order, err = svc.UpdateStatus(context.Background(), order.ID, "Delivered", "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredDate)
}

func TestUpdateStatus_RejectsIllegalTransitions(t *testing.T) {
	svc, products := newFixture(t)
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)
	order, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "Delivered", "")
	var transition *domain.TransitionError
	require.ErrorAs(t, err, &transition)
	require.Equal(t, domain.StatusPending, transition.From)

	order, err = svc.UpdateStatus(context.Background(), order.ID, "Cancelled", "")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, order.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "Processing", "")
	require.ErrorAs(t, err, &transition)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "Lost", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListOrders_ScopedToSellerWhenEnforced(t *testing.T) {
	products := catalogmemory.NewRepository()
	repo := ordersmemory.NewRepository(products)
	mine := seedProduct(t, products, sellerID, "Keyboard", 49.90, 10)
	theirs := seedProduct(t, products, "other-seller", "Mouse", 19.90, 10)

	svc := NewService(repo, sellersapp.NewTokenIdentity())
	myCtx := sellerports.ContextWithSellerID(context.Background(), sellerID)
	theirCtx := sellerports.ContextWithSellerID(context.Background(), "other-seller")

	myOrder, err := svc.CreateOrder(myCtx, ports.CreateOrderInput{
		CustomerName: "Ada Lovelace",
		Items:        []ports.CreateOrderItemInput{{ProductID: mine.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.CreateOrder(theirCtx, ports.CreateOrderInput{
		CustomerName: "Grace Hopper",
		Items:        []ports.CreateOrderItemInput{{ProductID: theirs.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	orders, err := svc.ListOrders(myCtx, 1, 20)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, myOrder.ID, orders[0].ID)

	_, err = svc.GetOrder(theirCtx, myOrder.ID)
	require.ErrorIs(t, err, ErrOwnership)
}

func TestStats_AggregatesBySeller(t *testing.T) {
	svc, products := newFixture(t)
	keyboard := seedProduct(t, products, sellerID, "Keyboard", 50.00, 10)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{
			CustomerName: "Ada Lovelace",
			Items:        []ports.CreateOrderItemInput{{ProductID: keyboard.ID, Quantity: 2}},
		})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalOrders)
	require.InDelta(t, 300.0, stats.TotalRevenue, 0.001)
}
