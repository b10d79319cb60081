package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is a purchasable option of a product. PriceAdjustment, when
// set, overrides the parent product's base price entirely.
type ProductVariant struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	Name            string           `gorm:"column:name;not null"`
	PriceAdjustment *decimal.Decimal `gorm:"column:price_adjustment;type:numeric(12,2)"`
	IsAvailable     bool             `gorm:"column:is_available;not null;default:true"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the variant's price adjustment when present, else the
// provided product base price.
func (v ProductVariant) EffectivePrice(basePrice decimal.Decimal) decimal.Decimal {
	if v.PriceAdjustment != nil {
		return *v.PriceAdjustment
	}
	return basePrice
}
