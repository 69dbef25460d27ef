package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an order. The set is closed; anything
// else is rejected at the edge.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// validNext encodes the allowed lifecycle transitions. Delivered and
// Cancelled are terminal.
var validNext = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus maps raw input onto the closed status set, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	for status := range validNext {
		if strings.EqualFold(raw, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the order can never change status again.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

// TransitionError reports an illegal status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
