package domain

import (
	"errors"
	"strings"
	"time"
)

// LowStockThreshold marks products the dashboard reports as running out.
const LowStockThreshold = 10

var (
	ErrEmptyName     = errors.New("product name must not be empty")
	ErrNegativePrice = errors.New("product price must not be negative")
	ErrNegativeStock = errors.New("product stock must not be negative")
)

// Product models a sellable catalog entry. Stock is only guaranteed
// non-negative through the order creation workflow; direct stock edits
// bypass that check.
type Product struct {
	ID          string
	SellerID    string
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	SKU         string
	ImageURL    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct validates and constructs a product aggregate. The id is
// assigned by the repository on first save.
func NewProduct(sellerID, name, description string, price float64, stock int, category, sku, imageURL string) (*Product, error) {
	p := &Product{
		SellerID:    sellerID,
		Name:        strings.TrimSpace(name),
		Description: description,
		Price:       price,
		Stock:       stock,
		Category:    category,
		SKU:         sku,
		ImageURL:    imageURL,
		Active:      true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces invariants on the aggregate.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Update carries a partial mutation; nil fields are left untouched.
type Update struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	Category    *string
	SKU         *string
	ImageURL    *string
	Active      *bool
}

// Apply merges the partial mutation into the aggregate and revalidates.
func (p *Product) Apply(u Update) error {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.SKU != nil {
		p.SKU = *u.SKU
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Active != nil {
		p.Active = *u.Active
	}
	return p.Validate()
}
