// Package ports declares the boundaries the core depends on. Storage,
// payments, and the stock mirror are external collaborators; the service
// layer depends on these interfaces, never on an adapter directly, so the
// implementation can be swapped for SQLite, Redis, or in-memory (tests).
package ports

import (
	"context"

	"github.com/arvela/commerce-core/internal/core/domain"
)

// OrderRepository persists order aggregates. FindByID returns an error
// wrapping domain.ErrNotFound on a miss, distinguishable from a storage
// fault.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)

	// Save upserts the order.
	Save(ctx context.Context, order *domain.Order) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	Save(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
}
