package ports

import "context"

// StockCache mirrors quantity-on-hand into a shared fast store so
// storefront reads do not hit the repository, and provides idempotency
// keys for checkout. It is a mirror, not the source of truth: the
// repository value wins and the mirror is rewritten after every
// successful adjustment.
type StockCache interface {
	// SetStock overwrites the mirrored quantity for a product.
	SetStock(ctx context.Context, productID string, quantity int) error

	// AddStock increments the mirrored quantity (stock release).
	AddStock(ctx context.Context, productID string, quantity int) error

	// RemoveStock atomically decrements the mirrored quantity, returning
	// false when the mirror holds less than quantity.
	RemoveStock(ctx context.Context, productID string, quantity int) (bool, error)

	// SetIdempotency claims a key, returning false if it was already
	// claimed.
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
