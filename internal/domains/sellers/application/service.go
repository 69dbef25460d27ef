package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/domain"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

// ErrInvalidInput signals the request violated a seller domain invariant.
var ErrInvalidInput = errors.New("invalid seller input")

// RegisterInput carries the fields needed to enroll a seller.
type RegisterInput struct {
	CompanyName string
	Email       string
	Phone       string
	Address     string
	TaxNumber   string
}

// Service exposes the seller enrollment use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a seller record after checking the email is unclaimed.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.Seller, error) {
	seller, err := domain.NewSeller(input.CompanyName, input.Email, input.Phone, input.Address, input.TaxNumber)
	if err != nil {
		return nil, mapError(err)
	}
	if existing, err := s.repo.GetByEmail(ctx, seller.Email); err == nil && existing != nil {
		return nil, ports.ErrEmailTaken
	} else if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	return s.repo.Save(ctx, seller)
}

// GetByID loads a seller record.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	return s.repo.GetByID(ctx, id)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyCompanyName) || errors.Is(err, domain.ErrInvalidEmail) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
