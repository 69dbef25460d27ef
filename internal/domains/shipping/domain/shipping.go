package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the delivery state of a shipment.
type Status string

const (
	StatusPreparing      Status = "Preparing"
	StatusShipped        Status = "Shipped"
	StatusInTransit      Status = "InTransit"
	StatusOutForDelivery Status = "OutForDelivery"
	StatusDelivered      Status = "Delivered"
)

var statuses = []Status{StatusPreparing, StatusShipped, StatusInTransit, StatusOutForDelivery, StatusDelivered}

// ParseStatus maps raw input onto the shipment status set, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	for _, status := range statuses {
		if strings.EqualFold(raw, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown shipping status %q", raw)
}

var ErrEmptyOrderID = errors.New("shipping order id must not be empty")

// Event is one step of a shipment's journey, appended as carriers report
// progress.
type Event struct {
	Status      Status    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Shipping tracks the delivery of one order.
type Shipping struct {
	ID                    string
	OrderID               string
	TrackingNumber        string
	Carrier               string
	Status                Status
	SellerID              string
	CurrentLocation       string
	Events                []Event
	CreatedAt             time.Time
	EstimatedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
}

// NewShipping starts tracking an order's delivery. A missing tracking
// number is generated by the repository on save.
func NewShipping(sellerID, orderID, trackingNumber, carrier string, estimatedDelivery *time.Time) (*Shipping, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrEmptyOrderID
	}
	return &Shipping{
		OrderID:               orderID,
		TrackingNumber:        strings.ToUpper(strings.TrimSpace(trackingNumber)),
		Carrier:               carrier,
		Status:                StatusPreparing,
		SellerID:              sellerID,
		EstimatedDeliveryDate: estimatedDelivery,
	}, nil
}

// AddEvent appends a tracking event, moving the shipment to the event's
// status and location. Reaching Delivered stamps the actual delivery date.
func (s *Shipping) AddEvent(status Status, location, description string, now time.Time) {
	s.Events = append(s.Events, Event{
		Status:      status,
		Location:    location,
		Description: description,
		Timestamp:   now,
	})
	s.Status = status
	if location != "" {
		s.CurrentLocation = location
	}
	if status == StatusDelivered && s.ActualDeliveryDate == nil {
		stamp := now
		s.ActualDeliveryDate = &stamp
	}
}
