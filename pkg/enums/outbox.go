package enums

import "fmt"

// OutboxEventType names the domain events flowing through the outbox table.
type OutboxEventType string

const (
	OutboxEventCheckoutCreated       OutboxEventType = "checkout.created"
	OutboxEventCheckoutStatusChanged OutboxEventType = "checkout.status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventCheckoutCreated,
	OutboxEventCheckoutStatusChanged,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the event type is recognized.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
