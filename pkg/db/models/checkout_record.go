package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/kinaskak/storefront-backend/pkg/enums"
)

// CheckoutRecord links a cart to a payment-provider checkout session. One row
// per attempt; MerchantReferenceID is freshly generated every time.
type CheckoutRecord struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID              uuid.UUID            `gorm:"column:cart_id;type:uuid;not null;index"`
	MerchantReferenceID string               `gorm:"column:merchant_reference_id;not null;uniqueIndex"`
	ProviderCheckoutID  string               `gorm:"column:provider_checkout_id;not null;index"`
	Amount              decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency            enums.Currency       `gorm:"column:currency;not null;default:'ISK'"`
	Email               string               `gorm:"column:email;not null"`
	FirstName           string               `gorm:"column:first_name;not null"`
	LastName            string               `gorm:"column:last_name;not null"`
	Kennitala           string               `gorm:"column:kennitala;not null"`
	Address             string               `gorm:"column:address;not null"`
	Apartment           *string              `gorm:"column:apartment"`
	City                string               `gorm:"column:city;not null"`
	SaveInfo            bool                 `gorm:"column:save_info;not null;default:false"`
	MarketingOptIn      bool                 `gorm:"column:marketing_opt_in;not null;default:false"`
	PaymentMethodTypes  pq.StringArray       `gorm:"column:payment_method_types;type:text[]"`
	Status              enums.CheckoutStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt           time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
