package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/pkg/db/models"
	"github.com/kinaskak/storefront-backend/pkg/enums"
)

// ErrCartNotFound is returned by stores when the cart id does not resolve.
// Callers treat it as "start over with an empty cart", not as a failure.
type cartNotFoundError struct{}

func (cartNotFoundError) Error() string { return "cart not found" }

var ErrCartNotFound error = cartNotFoundError{}

// Store is the persistence surface required by the cart service. The durable
// implementation is Postgres-backed; the ephemeral one keeps carts in memory
// and is used when the service runs without a database.
type Store interface {
	CreateCart(ctx context.Context) (*models.Cart, error)
	FindCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	GetItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)

	// AddItem inserts the (cart, variant) line or increments its quantity
	// atomically when the line already exists.
	AddItem(ctx context.Context, cartID, productID, variantID uuid.UUID, quantity int) error

	// SetItemQuantity sets the line's quantity to the given absolute value.
	// A value of zero or less removes the line. Missing lines are a no-op.
	SetItemQuantity(ctx context.Context, cartID, variantID uuid.UUID, quantity int) error

	// RemoveItem deletes the line. Missing lines are a no-op.
	RemoveItem(ctx context.Context, cartID, variantID uuid.UUID) error

	UpdateStatus(ctx context.Context, cartID uuid.UUID, status enums.CartStatus) error
}
