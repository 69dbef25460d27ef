package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalogmemory "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	dashboardmemory "github.com/sellerdesk/backoffice/internal/domains/dashboard/adapters/memory"
	ordersmemory "github.com/sellerdesk/backoffice/internal/domains/orders/adapters/memory"
	ordersdomain "github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	sellersapp "github.com/sellerdesk/backoffice/internal/domains/sellers/application"
)

const sellerID = "seller-1"

func seed(t *testing.T) (*catalogmemory.Repository, *ordersmemory.Repository) {
	t.Helper()
	products := catalogmemory.NewRepository()
	orders := ordersmemory.NewRepository(products)

	keyboard, err := products.Save(context.Background(), &catalogdomain.Product{
		SellerID: sellerID, Name: "Keyboard", Price: 50, Stock: 20, Active: true,
	})
	require.NoError(t, err)
	_, err = products.Save(context.Background(), &catalogdomain.Product{
		SellerID: sellerID, Name: "Mouse", Price: 20, Stock: 3, Active: true,
	})
	require.NoError(t, err)

	order, err := ordersdomain.NewOrder(sellerID, "", "Ada Lovelace", "", "", "",
		[]ordersdomain.OrderItem{{ProductID: keyboard.ID, Quantity: 2}}, time.Now().UTC())
	require.NoError(t, err)
	_, err = orders.Create(context.Background(), order, false)
	require.NoError(t, err)

	return products, orders
}

func TestStats_AggregatesInTheStore(t *testing.T) {
	products, orders := seed(t)
	svc := NewService(products, orders, sellersapp.NewSharedSellerIdentity(sellerID), dashboardmemory.NewCache(), time.Minute, nil)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalProducts)
	require.Equal(t, int64(1), stats.TotalOrders)
	require.InDelta(t, 100.0, stats.TotalRevenue, 0.001)
	require.Equal(t, int64(1), stats.LowStockProducts)
}

func TestStats_ServedFromCacheWithinTTL(t *testing.T) {
	products, orders := seed(t)
	svc := NewService(products, orders, sellersapp.NewSharedSellerIdentity(sellerID), dashboardmemory.NewCache(), time.Minute, nil)

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)

	// New orders do not show until the cached entry expires.
	stored, err := products.List(context.Background(), 1, 1)
	require.NoError(t, err)
	order, err := ordersdomain.NewOrder(sellerID, "", "Grace Hopper", "", "", "",
		[]ordersdomain.OrderItem{{ProductID: stored[0].ID, Quantity: 1}}, time.Now().UTC())
	require.NoError(t, err)
	_, err = orders.Create(context.Background(), order, false)
	require.NoError(t, err)

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestStats_WithoutCacheHitsTheStores(t *testing.T) {
	products, orders := seed(t)
	svc := NewService(products, orders, sellersapp.NewSharedSellerIdentity(sellerID), nil, time.Minute, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalProducts)
}
