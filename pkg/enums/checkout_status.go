package enums

import "fmt"

// CheckoutStatus is the lifecycle of a checkout attempt. Records start pending
// and are transitioned by the payment provider's return flow.
type CheckoutStatus string

const (
	CheckoutStatusPending   CheckoutStatus = "pending"
	CheckoutStatusCompleted CheckoutStatus = "completed"
	CheckoutStatusCancelled CheckoutStatus = "cancelled"
	CheckoutStatusFailed    CheckoutStatus = "failed"
)

var validCheckoutStatuses = []CheckoutStatus{
	CheckoutStatusPending,
	CheckoutStatusCompleted,
	CheckoutStatusCancelled,
	CheckoutStatusFailed,
}

// String implements fmt.Stringer.
func (c CheckoutStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStatus.
func (c CheckoutStatus) IsValid() bool {
	for _, candidate := range validCheckoutStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the checkout lifecycle.
func (c CheckoutStatus) IsTerminal() bool {
	return c == CheckoutStatusCompleted || c == CheckoutStatusCancelled || c == CheckoutStatusFailed
}

// ParseCheckoutStatus converts raw input into a CheckoutStatus.
func ParseCheckoutStatus(value string) (CheckoutStatus, error) {
	for _, candidate := range validCheckoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout status %q", value)
}
