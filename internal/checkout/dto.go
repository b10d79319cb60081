package checkout

import (
	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/internal/pricing"
	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
)

// StartResult is returned after a successful checkout handoff. RedirectURL is
// the provider's hosted page with the local record id appended for correlation
// on return.
type StartResult struct {
	CheckoutID  uuid.UUID `json:"checkoutId"`
	RedirectURL string    `json:"redirectUrl"`
}

// StatusDTO is the checkout record's lifecycle view.
type StatusDTO struct {
	CheckoutID          uuid.UUID            `json:"checkoutId"`
	CartID              uuid.UUID            `json:"cartId"`
	MerchantReferenceID string               `json:"merchantReferenceId"`
	Amount              string               `json:"amount"`
	Currency            string               `json:"currency"`
	Status              enums.CheckoutStatus `json:"status"`
}

func toStatusDTO(record models.CheckoutRecord) *StatusDTO {
	return &StatusDTO{
		CheckoutID:          record.ID,
		CartID:              record.CartID,
		MerchantReferenceID: record.MerchantReferenceID,
		Amount:              pricing.FormatAmount(record.Amount),
		Currency:            record.Currency.String(),
		Status:              record.Status,
	}
}

type checkoutCreatedPayload struct {
	CheckoutID          uuid.UUID `json:"checkout_id"`
	CartID              uuid.UUID `json:"cart_id"`
	MerchantReferenceID string    `json:"merchant_reference_id"`
	Amount              string    `json:"amount"`
	Currency            string    `json:"currency"`
}

type checkoutStatusChangedPayload struct {
	CheckoutID uuid.UUID            `json:"checkout_id"`
	From       enums.CheckoutStatus `json:"from"`
	To         enums.CheckoutStatus `json:"to"`
}
