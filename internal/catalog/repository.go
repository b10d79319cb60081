package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/pkg/db/models"
)

// Repository wires together catalog read persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByHandle loads a product with its variants by URL handle.
func (r *Repository) FindByHandle(ctx context.Context, handle string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "handle = ?", handle).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByID loads a product with its variants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListAvailable returns available products with variants, newest first.
func (r *Repository) ListAvailable(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("is_available = ?", true).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

// FindProductsByIDs batch-loads products without variants.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

// FindVariantsByIDs batch-loads variants.
func (r *Repository) FindVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&variants).Error
	return variants, err
}
