// Package postgres persists shipments with gorm. Tracking events ride
// along as a jsonb document, matching their append-only usage.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdesk/backoffice/internal/domains/shipping/domain"
	"github.com/sellerdesk/backoffice/internal/domains/shipping/ports"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

func (r *Repository) Save(ctx context.Context, shipping *domain.Shipping) (*domain.Shipping, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	record, err := toRecord(shipping)
	if err != nil {
		return nil, err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
		record.CreatedAt = time.Now().UTC()
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, fmt.Errorf("insert shipping: %w", err)
		}
		return toDomain(record)
	}

	result := r.db.WithContext(ctx).Model(&shippingRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
		"tracking_number":         record.TrackingNumber,
		"carrier":                 record.Carrier,
		"status":                  record.Status,
		"current_location":        record.CurrentLocation,
		"events":                  record.Events,
		"estimated_delivery_date": record.EstimatedDeliveryDate,
		"actual_delivery_date":    record.ActualDeliveryDate,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("update shipping: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Shipping, error) {
	return r.getWhere(ctx, "id = ?", id)
}

func (r *Repository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipping, error) {
	return r.getWhere(ctx, "tracking_number = ?", trackingNumber)
}

func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*domain.Shipping, error) {
	return r.getWhere(ctx, "order_id = ?", orderID)
}

func (r *Repository) List(ctx context.Context, page, size int) ([]*domain.Shipping, error) {
	return r.listWhere(ctx, nil, page, size)
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID string, page, size int) ([]*domain.Shipping, error) {
	return r.listWhere(ctx, map[string]any{"seller_id": sellerID}, page, size)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&shippingRecord{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete shipping: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) getWhere(ctx context.Context, query string, arg any) (*domain.Shipping, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	var record shippingRecord
	err := r.db.WithContext(ctx).First(&record, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load shipping: %w", err)
	}
	return toDomain(record)
}

func (r *Repository) listWhere(ctx context.Context, where map[string]any, page, size int) ([]*domain.Shipping, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&shippingRecord{})
	if where != nil {
		query = query.Where(where)
	}
	var records []shippingRecord
	err := query.Order("created_at desc, id").Offset((page - 1) * size).Limit(size).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list shipping: %w", err)
	}

	shipments := make([]*domain.Shipping, 0, len(records))
	for _, record := range records {
		shipping, err := toDomain(record)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, shipping)
	}
	return shipments, nil
}

func (r *Repository) ensureDB() error {
	if r.db == nil {
		return errors.New("shipping postgres repository: nil db")
	}
	return nil
}

func toRecord(s *domain.Shipping) (shippingRecord, error) {
	events, err := json.Marshal(s.Events)
	if err != nil {
		return shippingRecord{}, fmt.Errorf("encode shipping events: %w", err)
	}
	return shippingRecord{
		ID:                    s.ID,
		OrderID:               s.OrderID,
		TrackingNumber:        s.TrackingNumber,
		Carrier:               s.Carrier,
		Status:                string(s.Status),
		SellerID:              s.SellerID,
		CurrentLocation:       s.CurrentLocation,
		Events:                events,
		CreatedAt:             s.CreatedAt,
		EstimatedDeliveryDate: s.EstimatedDeliveryDate,
		ActualDeliveryDate:    s.ActualDeliveryDate,
	}, nil
}

func toDomain(record shippingRecord) (*domain.Shipping, error) {
	var events []domain.Event
	if len(record.Events) > 0 {
		if err := json.Unmarshal(record.Events, &events); err != nil {
			return nil, fmt.Errorf("decode shipping events: %w", err)
		}
	}
	status, err := domain.ParseStatus(record.Status)
	if err != nil {
		status = domain.Status(record.Status)
	}
	return &domain.Shipping{
		ID:                    record.ID,
		OrderID:               record.OrderID,
		TrackingNumber:        record.TrackingNumber,
		Carrier:               record.Carrier,
		Status:                status,
		SellerID:              record.SellerID,
		CurrentLocation:       record.CurrentLocation,
		Events:                events,
		CreatedAt:             record.CreatedAt,
		EstimatedDeliveryDate: record.EstimatedDeliveryDate,
		ActualDeliveryDate:    record.ActualDeliveryDate,
	}, nil
}
