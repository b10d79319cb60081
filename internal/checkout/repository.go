package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
)

// Repository persists checkout records.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, record *models.CheckoutRecord) (*models.CheckoutRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutRecord, error) {
	var record models.CheckoutRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) FindByMerchantReference(ctx context.Context, reference string) (*models.CheckoutRecord, error) {
	var record models.CheckoutRecord
	if err := r.db.WithContext(ctx).First(&record, "merchant_reference_id = ?", reference).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CheckoutStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.CheckoutRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
}
