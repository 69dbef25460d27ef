package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrEmptyCompanyName = errors.New("company name must not be empty")
	ErrInvalidEmail     = errors.New("seller email is invalid")
)

// Seller is the tenant owning products and orders in multi-tenant mode.
type Seller struct {
	ID          string
	CompanyName string
	Email       string
	Phone       string
	Address     string
	TaxNumber   string
	Active      bool
	CreatedAt   time.Time
}

// NewSeller validates and constructs a seller aggregate. The id is assigned
// by the repository on first save.
func NewSeller(companyName, email, phone, address, taxNumber string) (*Seller, error) {
	s := &Seller{
		CompanyName: strings.TrimSpace(companyName),
		Email:       strings.TrimSpace(email),
		Phone:       strings.TrimSpace(phone),
		Address:     strings.TrimSpace(address),
		TaxNumber:   strings.TrimSpace(taxNumber),
		Active:      true,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate enforces invariants on the aggregate.
func (s *Seller) Validate() error {
	if s.CompanyName == "" {
		return ErrEmptyCompanyName
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
