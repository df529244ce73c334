package ports

import "context"

// PaymentGateway records refund transactions. A synchronous failure
// aborts the cancellation that triggered it — the caller must not apply
// the order transition when RecordRefund errors.
type PaymentGateway interface {
	RecordRefund(ctx context.Context, orderID string, amount float64, reason string) error
}
