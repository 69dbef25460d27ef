package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

var (
	ErrInvalidInput = errors.New("invalid product input")
	// ErrOwnership is returned when a seller touches another seller's product.
	ErrOwnership = errors.New("product belongs to another seller")
)

// CreateProductInput carries the fields a seller supplies for a new product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	SKU         string
	ImageURL    string
}

// ImportResult reports the outcome of a spreadsheet import.
type ImportResult struct {
	SuccessCount int
	FailureCount int
	Errors       []string
}

// Service implements the catalog use cases.
type Service struct {
	repo     ports.Repository
	identity sellerports.Identity
	excel    ports.ExcelCodec
}

func NewService(repo ports.Repository, identity sellerports.Identity, excel ports.ExcelCodec) *Service {
	return &Service{repo: repo, identity: identity, excel: excel}
}

// CreateProduct validates the input and stores a new product owned by the
// calling seller.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return nil, err
	}
	product, err := domain.NewProduct(sellerID, in.Name, in.Description, in.Price, in.Stock, in.Category, in.SKU, in.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.repo.Save(ctx, product)
}

// GetProduct looks a product up by id. Reads are not ownership scoped.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts returns a page of products. When ownership is enforced the
// page is scoped to the calling seller.
func (s *Service) ListProducts(ctx context.Context, page, size int) ([]*domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	if !s.identity.EnforceOwnership() {
		return s.repo.List(ctx, page, size)
	}
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySeller(ctx, sellerID, page, size)
}

// UpdateProduct applies a partial update to a product the caller owns.
func (s *Service) UpdateProduct(ctx context.Context, id string, update domain.Update) (*domain.Product, error) {
	product, err := s.authorized(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Apply(update); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.repo.Save(ctx, product)
}

// DeleteProduct removes a product the caller owns.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.authorized(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ImportProducts reads a spreadsheet and creates one product per row.
// Invalid rows, malformed cells included, are skipped and reported; valid
// rows still land.
func (s *Service) ImportProducts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, rowErrs, err := s.excel.ReadProducts(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	result := &ImportResult{}
	for _, rowErr := range rowErrs {
		result.FailureCount++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowErr.Row, rowErr.Err))
	}
	for _, row := range rows {
		_, err := s.CreateProduct(ctx, CreateProductInput{
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
			Stock:       row.Stock,
			Category:    row.Category,
			SKU:         row.SKU,
			ImageURL:    row.ImageURL,
		})
		if err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Row, err))
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

// ExportProducts renders the caller's catalog as a spreadsheet.
func (s *Service) ExportProducts(ctx context.Context) ([]byte, error) {
	products, err := s.ListProducts(ctx, 1, 100)
	if err != nil {
		return nil, err
	}
	return s.excel.WriteProducts(products)
}

// Template returns an empty import spreadsheet with the expected headers.
func (s *Service) Template() ([]byte, error) {
	return s.excel.Template()
}

func (s *Service) authorized(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.identity.EnforceOwnership() {
		return product, nil
	}
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, ErrOwnership
	}
	return product, nil
}
