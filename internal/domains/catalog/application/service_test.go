package application

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	catalogexcel "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/excel"
	catalogmemory "github.com/sellerdesk/backoffice/internal/domains/catalog/adapters/memory"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
	sellersapp "github.com/sellerdesk/backoffice/internal/domains/sellers/application"
	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

const sellerID = "seller-1"

func newService() (*Service, *catalogmemory.Repository) {
	repo := catalogmemory.NewRepository()
	return NewService(repo, sellersapp.NewSharedSellerIdentity(sellerID), catalogexcel.NewCodec()), repo
}

func TestCreateProduct_Success(t *testing.T) {
	svc, _ := newService()

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Keyboard",
		Price: 49.90,
		Stock: 10,
		SKU:   "KB-01",
	})

	require.NoError(t, err)
	require.NotEmpty(t, product.ID)
	require.Equal(t, sellerID, product.SellerID)
	require.True(t, product.Active)
	require.False(t, product.CreatedAt.IsZero())
}

func TestCreateProduct_Invalid(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Price: 10})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyName)

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{Name: "Keyboard", Price: -1})
	require.ErrorIs(t, err, domain.ErrNegativePrice)

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{Name: "Keyboard", Stock: -1})
	require.ErrorIs(t, err, domain.ErrNegativeStock)
}

func TestUpdateProduct_PartialUpdate(t *testing.T) {
	svc, _ := newService()
	product, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Keyboard", Price: 49.90, Stock: 10})
	require.NoError(t, err)

	newPrice := 39.90
	inactive := false
	updated, err := svc.UpdateProduct(context.Background(), product.ID, domain.Update{Price: &newPrice, Active: &inactive})

	require.NoError(t, err)
	require.Equal(t, "Keyboard", updated.Name)
	require.InDelta(t, 39.90, updated.Price, 0.001)
	require.False(t, updated.Active)
	require.Equal(t, 10, updated.Stock)
}

func TestUpdateProduct_OwnershipEnforced(t *testing.T) {
	repo := catalogmemory.NewRepository()
	svc := NewService(repo, sellersapp.NewTokenIdentity(), catalogexcel.NewCodec())

	ownerCtx := sellerports.ContextWithSellerID(context.Background(), sellerID)
	product, err := svc.CreateProduct(ownerCtx, CreateProductInput{Name: "Keyboard", Price: 49.90, Stock: 10})
	require.NoError(t, err)

	strangerCtx := sellerports.ContextWithSellerID(context.Background(), "other-seller")
	newPrice := 1.0
	_, err = svc.UpdateProduct(strangerCtx, product.ID, domain.Update{Price: &newPrice})
	require.ErrorIs(t, err, ErrOwnership)

	err = svc.DeleteProduct(strangerCtx, product.ID)
	require.ErrorIs(t, err, ErrOwnership)

	// Reads stay unscoped.
	got, err := svc.GetProduct(strangerCtx, product.ID)
	require.NoError(t, err)
	require.Equal(t, product.ID, got.ID)
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := newService()
	product, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Keyboard", Price: 49.90, Stock: 10})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	_, err = svc.GetProduct(context.Background(), product.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)

	err = svc.DeleteProduct(context.Background(), product.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListProducts_ScopedToSellerWhenEnforced(t *testing.T) {
	repo := catalogmemory.NewRepository()
	svc := NewService(repo, sellersapp.NewTokenIdentity(), catalogexcel.NewCodec())

	myCtx := sellerports.ContextWithSellerID(context.Background(), sellerID)
	otherCtx := sellerports.ContextWithSellerID(context.Background(), "other-seller")
	_, err := svc.CreateProduct(myCtx, CreateProductInput{Name: "Keyboard", Price: 49.90, Stock: 10})
	require.NoError(t, err)
	_, err = svc.CreateProduct(otherCtx, CreateProductInput{Name: "Mouse", Price: 19.90, Stock: 5})
	require.NoError(t, err)

	products, err := svc.ListProducts(myCtx, 1, 20)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Keyboard", products[0].Name)
}

func TestImportExportRoundTrip(t *testing.T) {
	svc, _ := newService()
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Keyboard", Price: 49.90, Stock: 10, Category: "Peripherals", SKU: "KB-01"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), CreateProductInput{Name: "Mouse", Price: 19.90, Stock: 5})
	require.NoError(t, err)

	payload, err := svc.ExportProducts(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	fresh, repo := newService()
	result, err := fresh.ImportProducts(context.Background(), bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, 2, result.SuccessCount)
	require.Zero(t, result.FailureCount)

	stats, err := repo.StatsBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total)
	require.Equal(t, int64(1), stats.LowStock)
}

func TestImportProducts_ReportsBadRows(t *testing.T) {
	svc, repo := newService()

	template, err := svc.Template()
	require.NoError(t, err)

	// The template has only headers, so importing it creates nothing.
	result, err := svc.ImportProducts(context.Background(), bytes.NewReader(template))
	require.NoError(t, err)
	require.Zero(t, result.SuccessCount)
	require.Zero(t, result.FailureCount)

	stats, err := repo.StatsBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Zero(t, stats.Total)
}

func TestImportProducts_MalformedCellsDoNotAbortImport(t *testing.T) {
	svc, repo := newService()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Products"))
	rows := [][]any{
		{"Name", "Description", "Price", "Stock", "Category", "SKU", "ImageUrl", "IsActive"},
		{"Keyboard", "", "49.90", "10", "", "", "", ""},
		{"Mouse", "", "not-a-price", "5", "", "", "", ""},
		{"", "", "12.00", "1", "", "", "", ""},
	}
	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Products", cell, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// One good row, one unparseable price, one row failing validation:
	// the good row lands and both failures are reported by sheet row.
	result, err := svc.ImportProducts(context.Background(), buf)
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessCount)
	require.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Errors, 2)
	require.Contains(t, result.Errors[0], "row 3:")
	require.Contains(t, result.Errors[0], "invalid price")
	require.Contains(t, result.Errors[1], "row 4:")

	stats, err := repo.StatsBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Total)
}

func TestStatsBySeller_CountsLowStock(t *testing.T) {
	svc, repo := newService()
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Keyboard", Price: 49.90, Stock: domain.LowStockThreshold})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), CreateProductInput{Name: "Mouse", Price: 19.90, Stock: domain.LowStockThreshold - 1})
	require.NoError(t, err)

	stats, err := repo.StatsBySeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total)
	require.Equal(t, int64(1), stats.LowStock)
}
