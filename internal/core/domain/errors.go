package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an aggregate missing at the storage boundary.
// Repositories wrap it with the entity kind and ID so callers can both
// match it with errors.Is and surface a precise message.
var ErrNotFound = errors.New("not found")

// ErrNegativeQuantity is returned when a Quantity would go below zero,
// either at construction or through arithmetic.
var ErrNegativeQuantity = errors.New("quantity cannot be negative")

// InvalidTransitionError reports an illegal order-status change attempt.
// It is a caller error, never retried.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// InsufficientStockError reports a stock removal exceeding availability.
// Requested and Available are carried so the caller can present both
// amounts; the product's quantity is never silently clamped.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// RefundValidationError rejects a malformed refund command before any
// state mutation happens.
type RefundValidationError struct {
	Reason string
}

func (e *RefundValidationError) Error() string {
	return "refund validation failed: " + e.Reason
}
