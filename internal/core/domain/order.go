package domain

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid reports whether s is one of the defined statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Order struct {
	ID         string
	CustomerID string
	Items      []OrderItem
	Total      float64
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// CancellationPolicy resolves the one deliberately configurable edge of
// the transition table: whether a DELIVERED order may still be cancelled
// (post-delivery returns). The zero value forbids it.
type CancellationPolicy struct {
	AllowAfterDelivery bool
}

// forward is the happy-path chain; CANCELLED is handled separately since
// it is reachable from every non-terminal state.
var forward = map[OrderStatus]OrderStatus{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// CanTransition reports whether from → to is a legal status change under
// the given policy. PENDING is entry-only and never a valid target.
func CanTransition(from, to OrderStatus, policy CancellationPolicy) bool {
	if !from.IsValid() || !to.IsValid() || to == StatusPending {
		return false
	}
	if to == StatusCancelled {
		if from == StatusCancelled {
			return false
		}
		if from == StatusDelivered {
			return policy.AllowAfterDelivery
		}
		return true
	}
	return forward[from] == to
}

// TransitionTo moves the order to target if the change is legal,
// stamping UpdatedAt with now. On an illegal change it returns
// *InvalidTransitionError and leaves the order untouched.
func (o *Order) TransitionTo(target OrderStatus, policy CancellationPolicy, now time.Time) error {
	if !CanTransition(o.Status, target, policy) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// Leaf specifications over orders, composed by query use cases.

func OrderHasStatus(status OrderStatus) Specification[Order] {
	return func(o Order) bool { return o.Status == status }
}

func OrderBelongsTo(customerID string) Specification[Order] {
	return func(o Order) bool { return o.CustomerID == customerID }
}

func OrderIsOpen() Specification[Order] {
	return func(o Order) bool { return !o.Status.IsTerminal() }
}
