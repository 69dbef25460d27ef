// Package migrations owns the relational schema for all bounded contexts.
package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapter-level automigrate
// mirrors these records; this is the single authoritative place.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&shippingRecord{},
		&sellerRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID          string    `gorm:"primaryKey;column:id;size:64"`
	SellerID    string    `gorm:"column:seller_id;size:64;index"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	Price       float64   `gorm:"column:price"`
	Stock       int       `gorm:"column:stock"`
	Category    string    `gorm:"column:category;index"`
	SKU         string    `gorm:"column:sku;index"`
	ImageURL    string    `gorm:"column:image_url"`
	Active      bool      `gorm:"column:active"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID              string     `gorm:"primaryKey;column:id;size:64"`
	OrderNumber     string     `gorm:"column:order_number;uniqueIndex"`
	SellerID        string     `gorm:"column:seller_id;size:64;index:idx_orders_seller_created"`
	CustomerID      string     `gorm:"column:customer_id;size:64"`
	CustomerName    string     `gorm:"column:customer_name"`
	CustomerEmail   string     `gorm:"column:customer_email"`
	CustomerPhone   string     `gorm:"column:customer_phone"`
	TotalAmount     float64    `gorm:"column:total_amount"`
	Status          string     `gorm:"column:status;type:varchar(32);index"`
	ShippingAddress string     `gorm:"column:shipping_address"`
	TrackingNumber  string     `gorm:"column:tracking_number"`
	OrderDate       time.Time  `gorm:"column:order_date"`
	ShippedDate     *time.Time `gorm:"column:shipped_date"`
	DeliveredDate   *time.Time `gorm:"column:delivered_date"`
	CreatedAt       time.Time  `gorm:"column:created_at;index:idx_orders_seller_created"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Order line items live in their own table keyed by order id.
type orderItemRecord struct {
	ID          int64   `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID     string  `gorm:"column:order_id;size:64;index"`
	ProductID   string  `gorm:"column:product_id;size:64;index"`
	ProductName string  `gorm:"column:product_name"`
	Quantity    int     `gorm:"column:quantity"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	TotalPrice  float64 `gorm:"column:total_price"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Shipping schema mirrors the shipping Postgres adapter. Events are stored as
// a JSON document alongside the record, matching their append-only usage.
type shippingRecord struct {
	ID                    string     `gorm:"primaryKey;column:id;size:64"`
	OrderID               string     `gorm:"column:order_id;size:64;index"`
	TrackingNumber        string     `gorm:"column:tracking_number;uniqueIndex"`
	Carrier               string     `gorm:"column:carrier"`
	Status                string     `gorm:"column:status;type:varchar(32);index"`
	SellerID              string     `gorm:"column:seller_id;size:64;index"`
	CurrentLocation       string     `gorm:"column:current_location"`
	Events                []byte     `gorm:"column:events;type:jsonb"`
	CreatedAt             time.Time  `gorm:"column:created_at;index"`
	EstimatedDeliveryDate *time.Time `gorm:"column:estimated_delivery_date"`
	ActualDeliveryDate    *time.Time `gorm:"column:actual_delivery_date"`
}

func (shippingRecord) TableName() string { return "shipping" }

// Seller schema mirrors the sellers Postgres adapter.
type sellerRecord struct {
	ID          string    `gorm:"primaryKey;column:id;size:64"`
	CompanyName string    `gorm:"column:company_name"`
	Email       string    `gorm:"column:email;uniqueIndex"`
	Phone       string    `gorm:"column:phone"`
	Address     string    `gorm:"column:address"`
	TaxNumber   string    `gorm:"column:tax_number"`
	Active      bool      `gorm:"column:active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (sellerRecord) TableName() string { return "sellers" }
