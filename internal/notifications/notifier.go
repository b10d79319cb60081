package notifications

import (
	"context"

	"github.com/google/uuid"
)

// OrderLine is one purchased line rendered into the confirmation mail.
type OrderLine struct {
	ProductName string
	VariantName string
	Quantity    int
	LineTotal   string
}

// Order carries everything the confirmation mails need.
type Order struct {
	CheckoutID uuid.UUID
	Email      string
	FirstName  string
	LastName   string
	Amount     string
	Currency   string
	Lines      []OrderLine
}

// Notifier announces a new order. Implementations must be safe to fail:
// checkout treats notification errors as log-only.
type Notifier interface {
	OrderCreated(ctx context.Context, order Order) error
}
