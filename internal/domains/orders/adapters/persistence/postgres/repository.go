// Package postgres persists orders with gorm. Order creation locks the
// involved product rows and decrements stock in the same transaction, so
// two competing orders for the last unit cannot both win.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerdesk/backoffice/internal/domains/orders/domain"
	"github.com/sellerdesk/backoffice/internal/domains/orders/ports"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// productRow is the slice of the products table order creation touches.
type productRow struct {
	ID       string  `gorm:"primaryKey;column:id"`
	SellerID string  `gorm:"column:seller_id"`
	Name     string  `gorm:"column:name"`
	Price    float64 `gorm:"column:price"`
	Stock    int     `gorm:"column:stock"`
}

func (productRow) TableName() string { return "products" }

func (r *Repository) Create(ctx context.Context, order *domain.Order, enforceOwnership bool) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	created := *order
	created.Items = append([]domain.OrderItem(nil), order.Items...)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		demands := created.Demands()
		ids := make([]string, 0, len(demands))
		for id := range demands {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		var rows []productRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Order("id").Find(&rows).Error
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		byID := make(map[string]productRow, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}
		for _, id := range ids {
			row, ok := byID[id]
			if !ok {
				return &ports.ProductNotFoundError{ProductID: id}
			}
			if enforceOwnership && row.SellerID != created.SellerID {
				return fmt.Errorf("%w: product %s", ports.ErrOwnershipViolation, id)
			}
			if row.Stock < demands[id] {
				return &ports.InsufficientStockError{
					ProductID:   id,
					ProductName: row.Name,
					Available:   row.Stock,
					Requested:   demands[id],
				}
			}
		}

		now := time.Now().UTC()
		for _, id := range ids {
			err := tx.Model(&productRow{}).Where("id = ?", id).Updates(map[string]any{
				"stock":      gorm.Expr("stock - ?", demands[id]),
				"updated_at": now,
			}).Error
			if err != nil {
				return fmt.Errorf("decrement stock for %s: %w", id, err)
			}
		}

		if err := created.PriceItems(func(productID string) (string, float64, bool) {
			row, ok := byID[productID]
			return row.Name, row.Price, ok
		}); err != nil {
			return err
		}

		created.ID = uuid.NewString()
		created.CreatedAt = now
		created.UpdatedAt = now
		if err := tx.Create(toRecord(&created)).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		items := make([]orderItemRecord, 0, len(created.Items))
		for _, item := range created.Items {
			items = append(items, orderItemRecord{
				OrderID:     created.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TotalPrice:  item.TotalPrice,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	var record orderRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return toDomain(record, items[id]), nil
}

func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":          string(order.Status),
		"tracking_number": order.TrackingNumber,
		"shipped_date":    order.ShippedDate,
		"delivered_date":  order.DeliveredDate,
		"updated_at":      time.Now().UTC(),
	})
	if result.Error != nil {
		return nil, classify(fmt.Errorf("update order: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, order.ID)
}

func (r *Repository) List(ctx context.Context, page, size int) ([]*domain.Order, error) {
	return r.listWhere(ctx, nil, page, size)
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID string, page, size int) ([]*domain.Order, error) {
	return r.listWhere(ctx, map[string]any{"seller_id": sellerID}, page, size)
}

func (r *Repository) StatsBySeller(ctx context.Context, sellerID string) (ports.Stats, error) {
	if err := r.ensureDB(); err != nil {
		return ports.Stats{}, err
	}

	var row struct {
		TotalOrders  int64
		TotalRevenue float64
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{}).
		Select("count(*) as total_orders, coalesce(sum(total_amount), 0) as total_revenue")
	if sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}
	if err := query.Scan(&row).Error; err != nil {
		return ports.Stats{}, fmt.Errorf("aggregate orders: %w", err)
	}
	return ports.Stats{TotalOrders: row.TotalOrders, TotalRevenue: row.TotalRevenue}, nil
}

func (r *Repository) listWhere(ctx context.Context, where map[string]any, page, size int) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if where != nil {
		query = query.Where(where)
	}
	var records []orderRecord
	err := query.Order("created_at desc, id").Offset((page - 1) * size).Limit(size).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, toDomain(record, items[record.ID]))
	}
	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	var records []orderItemRecord
	err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	items := make(map[string][]domain.OrderItem, len(orderIDs))
	for _, record := range records {
		items[record.OrderID] = append(items[record.OrderID], domain.OrderItem{
			ProductID:   record.ProductID,
			ProductName: record.ProductName,
			Quantity:    record.Quantity,
			UnitPrice:   record.UnitPrice,
			TotalPrice:  record.TotalPrice,
		})
	}
	return items, nil
}

func (r *Repository) ensureDB() error {
	if r.db == nil {
		return errors.New("orders postgres repository: nil db")
	}
	return nil
}

// classify wraps retryable storage failures with ErrTransient so the
// service layer can re-run the creation transaction. Domain level failures
// pass through untouched.
func classify(err error) error {
	var notFound *ports.ProductNotFoundError
	var stock *ports.InsufficientStockError
	if errors.As(err, &notFound) || errors.As(err, &stock) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return fmt.Errorf("%w: %w", ports.ErrTransient, err)
		case strings.HasPrefix(pgErr.Code, "08"):
			return fmt.Errorf("%w: %w", ports.ErrTransient, err)
		}
	}
	return err
}

func toRecord(o *domain.Order) *orderRecord {
	return &orderRecord{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		SellerID:        o.SellerID,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		TrackingNumber:  o.TrackingNumber,
		OrderDate:       o.OrderDate,
		ShippedDate:     o.ShippedDate,
		DeliveredDate:   o.DeliveredDate,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toDomain(record orderRecord, items []domain.OrderItem) *domain.Order {
	status, err := domain.ParseStatus(record.Status)
	if err != nil {
		status = domain.Status(record.Status)
	}
	return &domain.Order{
		ID:              record.ID,
		OrderNumber:     record.OrderNumber,
		SellerID:        record.SellerID,
		CustomerID:      record.CustomerID,
		CustomerName:    record.CustomerName,
		CustomerEmail:   record.CustomerEmail,
		CustomerPhone:   record.CustomerPhone,
		Items:           items,
		TotalAmount:     record.TotalAmount,
		Status:          status,
		ShippingAddress: record.ShippingAddress,
		TrackingNumber:  record.TrackingNumber,
		OrderDate:       record.OrderDate,
		ShippedDate:     record.ShippedDate,
		DeliveredDate:   record.DeliveredDate,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
