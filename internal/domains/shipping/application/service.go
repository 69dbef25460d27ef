package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
	"github.com/sellerdesk/backoffice/internal/domains/shipping/domain"
	shippingports "github.com/sellerdesk/backoffice/internal/domains/shipping/ports"
)

var (
	ErrInvalidInput = errors.New("invalid shipping input")
	// ErrOwnership is returned when a seller touches another seller's shipment.
	ErrOwnership = errors.New("shipping record belongs to another seller")
)

// CreateShippingInput carries the fields a seller supplies when a shipment
// starts tracking.
type CreateShippingInput struct {
	OrderID               string
	TrackingNumber        string
	Carrier               string
	EstimatedDeliveryDate *time.Time
}

// AddEventInput is one carrier progress report.
type AddEventInput struct {
	Status      string
	Location    string
	Description string
}

// Service implements the shipment tracking use cases.
type Service struct {
	repo     shippingports.Repository
	identity ports.Identity
	now      func() time.Time
}

func NewService(repo shippingports.Repository, identity ports.Identity) *Service {
	return &Service{repo: repo, identity: identity, now: time.Now}
}

// WithClock fixes the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateShipping starts tracking an order's delivery. A missing tracking
// number is generated.
func (s *Service) CreateShipping(ctx context.Context, in CreateShippingInput) (*domain.Shipping, error) {
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return nil, err
	}
	shipping, err := domain.NewShipping(sellerID, in.OrderID, in.TrackingNumber, in.Carrier, in.EstimatedDeliveryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if shipping.TrackingNumber == "" {
		shipping.TrackingNumber = GenerateTrackingNumber()
	}
	return s.repo.Save(ctx, shipping)
}

// GetShipping looks a shipment up by id.
func (s *Service) GetShipping(ctx context.Context, id string) (*domain.Shipping, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByTrackingNumber looks a shipment up the way a customer would.
func (s *Service) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipping, error) {
	return s.repo.GetByTrackingNumber(ctx, strings.ToUpper(strings.TrimSpace(trackingNumber)))
}

// GetByOrderID looks a shipment up by the order it delivers.
func (s *Service) GetByOrderID(ctx context.Context, orderID string) (*domain.Shipping, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// ListShipping returns a page of shipments. When ownership is enforced the
// page is scoped to the calling seller.
func (s *Service) ListShipping(ctx context.Context, page, size int) ([]*domain.Shipping, error) {
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

// AddEvent appends a carrier progress report to a shipment the caller owns.
func (s *Service) AddEvent(ctx context.Context, id string, in AddEventInput) (*domain.Shipping, error) {
	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	shipping, err := s.authorized(ctx, id)
	if err != nil {
		return nil, err
	}
	shipping.AddEvent(status, in.Location, in.Description, s.now().UTC())
	return s.repo.Save(ctx, shipping)
}

// DeleteShipping removes a shipment the caller owns.
func (s *Service) DeleteShipping(ctx context.Context, id string) error {
	if _, err := s.authorized(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorized(ctx context.Context, id string) (*domain.Shipping, error) {
	shipping, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.identity.EnforceOwnership() {
		return shipping, nil
	}
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return nil, err
	}
	if shipping.SellerID != sellerID {
		return nil, ErrOwnership
	}
	return shipping, nil
}

// GenerateTrackingNumber produces a 10 character uppercase tracking code.
func GenerateTrackingNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:10]
}
