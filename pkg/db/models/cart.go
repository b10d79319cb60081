package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/pkg/enums"
)

// Cart is the durable container for a shopper's cart lines. It is created on
// the first add-to-cart action and marked converted after a successful
// checkout handoff.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status    enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
