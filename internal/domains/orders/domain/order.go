package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxItemQuantity caps a single order line. Larger purchases go through
// multiple orders.
const MaxItemQuantity = 1000

var (
	ErrNoItems           = errors.New("order must contain at least one item")
	ErrEmptyCustomerName = errors.New("customer name must not be empty")
	ErrEmptyProductID    = errors.New("order item product id must not be empty")
)

// QuantityError reports an out-of-range item quantity.
type QuantityError struct {
	ProductID string
	Quantity  int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("quantity %d for product %s must be between 1 and %d", e.Quantity, e.ProductID, MaxItemQuantity)
}

// OrderItem is one priced line of an order. ProductName, UnitPrice and
// TotalPrice are filled from the catalog inside the creation transaction,
// never trusted from the client.
type OrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
}

// Order is the aggregate at the heart of the back office. It is created
// through the stock reservation workflow and then walks the status
// lifecycle until a terminal state.
type Order struct {
	ID              string
	OrderNumber     string
	SellerID        string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Items           []OrderItem
	TotalAmount     float64
	Status          Status
	ShippingAddress string
	TrackingNumber  string
	OrderDate       time.Time
	ShippedDate     *time.Time
	DeliveredDate   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrder validates the request shape and builds a pending, unpriced
// order. Pricing happens in the repository while product rows are locked.
func NewOrder(sellerID, customerID, customerName, customerEmail, customerPhone, shippingAddress string, items []OrderItem, now time.Time) (*Order, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, ErrEmptyCustomerName
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	lines := make([]OrderItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, ErrEmptyProductID
		}
		if item.Quantity < 1 || item.Quantity > MaxItemQuantity {
			return nil, &QuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		lines = append(lines, OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return &Order{
		OrderNumber:     fmt.Sprintf("ORD-%d", now.UnixNano()),
		SellerID:        sellerID,
		CustomerID:      customerID,
		CustomerName:    strings.TrimSpace(customerName),
		CustomerEmail:   customerEmail,
		CustomerPhone:   customerPhone,
		Items:           lines,
		Status:          StatusPending,
		ShippingAddress: shippingAddress,
		OrderDate:       now,
	}, nil
}

// Demands returns the total quantity requested per product id, merging
// duplicate lines.
func (o *Order) Demands() map[string]int {
	demands := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		demands[item.ProductID] += item.Quantity
	}
	return demands
}

// PriceItems fills line names and unit prices from the given lookup and
// computes line and order totals. The lookup must cover every product id.
func (o *Order) PriceItems(lookup func(productID string) (name string, unitPrice float64, ok bool)) error {
	o.TotalAmount = 0
	for i := range o.Items {
		name, unitPrice, ok := lookup(o.Items[i].ProductID)
		if !ok {
			return fmt.Errorf("no price for product %s", o.Items[i].ProductID)
		}
		o.Items[i].ProductName = name
		o.Items[i].UnitPrice = unitPrice
		o.Items[i].TotalPrice = unitPrice * float64(o.Items[i].Quantity)
		o.TotalAmount += o.Items[i].TotalPrice
	}
	return nil
}

// TransitionTo moves the order to the next lifecycle state, stamping the
// shipped and delivered dates as the order passes through them.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return &TransitionError{From: o.Status, To: next}
	}
	o.Status = next
	switch next {
	case StatusShipped:
		stamp := now
		o.ShippedDate = &stamp
	case StatusDelivered:
		stamp := now
		o.DeliveredDate = &stamp
	}
	return nil
}
