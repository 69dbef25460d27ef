package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerdesk/backoffice/internal/domains/sellers/domain"
	"github.com/sellerdesk/backoffice/internal/domains/sellers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists sellers in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

func (r *Repository) Save(ctx context.Context, seller *domain.Seller) (*domain.Seller, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := toRecord(seller)
	if record.ID == "" {
		record.ID = uuid.NewString()
		record.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record sellerRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record sellerRecord
	if err := r.db.WithContext(ctx).First(&record, "lower(email) = lower(?)", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&sellerRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres seller repository not configured")
	}
	return nil
}

func toRecord(seller *domain.Seller) sellerRecord {
	return sellerRecord{
		ID:          seller.ID,
		CompanyName: seller.CompanyName,
		Email:       seller.Email,
		Phone:       seller.Phone,
		Address:     seller.Address,
		TaxNumber:   seller.TaxNumber,
		Active:      seller.Active,
		CreatedAt:   seller.CreatedAt,
	}
}

func (rec sellerRecord) toDomain() *domain.Seller {
	return &domain.Seller{
		ID:          rec.ID,
		CompanyName: rec.CompanyName,
		Email:       rec.Email,
		Phone:       rec.Phone,
		Address:     rec.Address,
		TaxNumber:   rec.TaxNumber,
		Active:      rec.Active,
		CreatedAt:   rec.CreatedAt,
	}
}
