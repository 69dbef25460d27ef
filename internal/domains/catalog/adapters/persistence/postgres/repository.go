// Package postgres persists the product catalog with gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	record := toRecord(product)
	if record.ID == "" {
		record.ID = uuid.NewString()
		record.CreatedAt = time.Now().UTC()
		record.UpdatedAt = record.CreatedAt
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, fmt.Errorf("insert product: %w", err)
		}
		return toDomain(record), nil
	}

	record.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
		"seller_id":   record.SellerID,
		"name":        record.Name,
		"description": record.Description,
		"price":       record.Price,
		"stock":       record.Stock,
		"category":    record.Category,
		"sku":         record.SKU,
		"image_url":   record.ImageURL,
		"active":      record.Active,
		"updated_at":  record.UpdatedAt,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	var record productRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return toDomain(record), nil
}

func (r *Repository) List(ctx context.Context, page, size int) ([]*domain.Product, error) {
	return r.listWhere(ctx, nil, page, size)
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID string, page, size int) ([]*domain.Product, error) {
	return r.listWhere(ctx, map[string]any{"seller_id": sellerID}, page, size)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&productRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) StatsBySeller(ctx context.Context, sellerID string) (ports.Stats, error) {
	if err := r.ensureDB(); err != nil {
		return ports.Stats{}, err
	}

	var row struct {
		Total    int64
		LowStock int64
	}
	query := r.db.WithContext(ctx).Model(&productRecord{}).
		Select("count(*) as total, count(*) filter (where stock < ?) as low_stock", domain.LowStockThreshold)
	if sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}
	if err := query.Scan(&row).Error; err != nil {
		return ports.Stats{}, fmt.Errorf("aggregate products: %w", err)
	}
	return ports.Stats{Total: row.Total, LowStock: row.LowStock}, nil
}

func (r *Repository) listWhere(ctx context.Context, where map[string]any, page, size int) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&productRecord{})
	if where != nil {
		query = query.Where(where)
	}
	var records []productRecord
	err := query.Order("created_at desc, id").Offset((page - 1) * size).Limit(size).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]*domain.Product, 0, len(records))
	for _, record := range records {
		products = append(products, toDomain(record))
	}
	return products, nil
}

func (r *Repository) ensureDB() error {
	if r.db == nil {
		return errors.New("catalog postgres repository: nil db")
	}
	return nil
}

func toRecord(p *domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		SKU:         p.SKU,
		ImageURL:    p.ImageURL,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDomain(record productRecord) *domain.Product {
	return &domain.Product{
		ID:          record.ID,
		SellerID:    record.SellerID,
		Name:        record.Name,
		Description: record.Description,
		Price:       record.Price,
		Stock:       record.Stock,
		Category:    record.Category,
		SKU:         record.SKU,
		ImageURL:    record.ImageURL,
		Active:      record.Active,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
