// internal/domain/order/status.go
package order

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidTransition is returned when a status change is not allowed
var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions lists where each status may move next; delivered and
// cancelled are terminal
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {
		OrderStatusAccepted,
		OrderStatusCancelled,
	},
	OrderStatusAccepted: {
		OrderStatusPreparing,
		OrderStatusCancelled,
	},
	OrderStatusPreparing: {
		OrderStatusReady,
		OrderStatusCancelled,
	},
	OrderStatusReady: {
		OrderStatusOutForDelivery,
		OrderStatusCancelled,
	},
	OrderStatusOutForDelivery: {
		OrderStatusDelivered,
	},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to OrderStatus) bool {
	return slices.Contains(validTransitions[from], to)
}

// NextStatuses returns the statuses reachable from s
func NextStatuses(s OrderStatus) []OrderStatus {
	return slices.Clone(validTransitions[s])
}

// IsTerminal reports whether no further transitions are possible
func IsTerminal(s OrderStatus) bool {
	next, ok := validTransitions[s]
	return ok && len(next) == 0
}

// CheckTransition returns nil when from→to is allowed or a no-op
func CheckTransition(from, to OrderStatus) error {
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}
