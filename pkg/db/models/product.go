package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. The cart treats it as read-only.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Handle      string           `gorm:"column:handle;not null;uniqueIndex"`
	Name        string           `gorm:"column:name;not null"`
	Description *string          `gorm:"column:description"`
	BasePrice   decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	IsAvailable bool             `gorm:"column:is_available;not null;default:true"`
	ImageURL    *string          `gorm:"column:image_url"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
