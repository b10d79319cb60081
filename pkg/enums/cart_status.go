package enums

import "fmt"

// CartStatus tracks whether a cart is still open or already handed to checkout.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusConverted CartStatus = "converted"
)

var validCartStatuses = []CartStatus{
	CartStatusActive,
	CartStatusConverted,
}

// String implements fmt.Stringer.
func (c CartStatus) String() string {
	return string(c)
}

// IsOpen reports whether the cart can still be mutated.
func (c CartStatus) IsOpen() bool {
	return c == CartStatusActive
}

// IsValid reports whether the value is a known CartStatus.
func (c CartStatus) IsValid() bool {
	for _, candidate := range validCartStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartStatus converts raw input into a CartStatus.
func ParseCartStatus(value string) (CartStatus, error) {
	for _, candidate := range validCartStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart status %q", value)
}
