package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/ports"
	sellerports "github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

var (
	ErrInvalidInput = errors.New("invalid order input")
	// ErrOwnership is returned when a seller touches another seller's order.
	ErrOwnership = errors.New("order belongs to another seller")
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 50 * time.Millisecond
)

// Service implements the order use cases. Creation delegates the atomic
// stock reservation to the repository and retries transient failures with
// a bounded backoff.
type Service struct {
	repo        ports.Repository
	identity    sellerports.Identity
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

type Option func(*Service)

// WithRetry overrides the transient failure retry policy.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		s.backoff = backoff
	}
}

// WithClock fixes the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo ports.Repository, identity sellerports.Identity, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		identity:    identity,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder resolves the calling seller and runs the creation workflow.
func (s *Service) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.CreateOrderForSeller(ctx, sellerID, in)
}

// CreateOrderForSeller validates the request and persists the order through
// the atomic stock reservation. Callers that already resolved the seller,
// such as workflow activities, enter here.
func (s *Service) CreateOrderForSeller(ctx context.Context, sellerID string, in ports.CreateOrderInput) (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := domain.NewOrder(sellerID, in.CustomerID, in.CustomerName, in.CustomerEmail, in.CustomerPhone, in.ShippingAddress, items, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var created *domain.Order
	for attempt := 1; ; attempt++ {
		created, err = s.repo.Create(ctx, order, s.identity.EnforceOwnership())
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, ports.ErrTransient) || attempt >= s.maxAttempts {
			return nil, err
		}
		if err := sleep(ctx, s.backoff*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}
}

// GetOrder loads one order, enforcing ownership when the identity demands it.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.authorized(ctx, id)
}

// ListOrders returns a page of orders. When ownership is enforced the page
// is scoped to the calling seller.
func (s *Service) ListOrders(ctx context.Context, page, size int) ([]*domain.Order, error) {
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

// UpdateStatus moves an order along its lifecycle. A tracking number may be
// attached when the order ships.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus, trackingNumber string) (*domain.Order, error) {
	next, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	order, err := s.authorized(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(next, s.now().UTC()); err != nil {
		return nil, err
	}
	if next == domain.StatusShipped && trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}
	return s.repo.Update(ctx, order)
}

// Stats aggregates the caller's orders in the store.
func (s *Service) Stats(ctx context.Context) (ports.Stats, error) {
	if !s.identity.EnforceOwnership() {
		return s.repo.StatsBySeller(ctx, "")
	}
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return ports.Stats{}, err
	}
	return s.repo.StatsBySeller(ctx, sellerID)
}

func (s *Service) authorized(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.identity.EnforceOwnership() {
		return order, nil
	}
	sellerID, err := s.identity.ResolveSellerID(ctx)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, ErrOwnership
	}
	return order, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
