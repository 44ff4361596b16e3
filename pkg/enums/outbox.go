package enums

import "fmt"

// OutboxAggregateType identifies the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateCart OutboxAggregateType = "cart"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCart,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType identifies the domain event carried by an outbox row.
type OutboxEventType string

const (
	EventCartUpdated    OutboxEventType = "cart_updated"
	EventCartReconciled OutboxEventType = "cart_reconciled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCartUpdated,
	EventCartReconciled,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
