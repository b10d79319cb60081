package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
)

// Repository is the durable, Postgres-backed cart store.
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

func (r *Repository) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{
		ID:     uuid.New(),
		Status: enums.CartStatusActive,
	}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *Repository) FindCart(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) GetItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// AddItem upserts the line in a single statement so concurrent adds of the
// same variant both land as quantity increments instead of one overwriting
// the other.
func (r *Repository) AddItem(ctx context.Context, cartID, productID, variantID uuid.UUID, quantity int) error {
	item := models.CartItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "variant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(&item).Error
}

func (r *Repository) SetItemQuantity(ctx context.Context, cartID, variantID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, cartID, variantID)
	}
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
}

func (r *Repository) RemoveItem(ctx context.Context, cartID, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Delete(&models.CartItem{}).Error
}

func (r *Repository) UpdateStatus(ctx context.Context, cartID uuid.UUID, status enums.CartStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("status", status).Error
}
