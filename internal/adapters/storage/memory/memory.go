// Package memory provides mutex-guarded map implementations of the
// storage and payment ports. Used for tests and for running the server
// without a database file.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/arvela/commerce-core/internal/core/domain"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	seq    []string // insertion order for FindAll
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]domain.Order)}
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Order
	for _, id := range r.seq {
		if o := r.orders[id]; o.CustomerID == customerID {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.seq))
	for _, id := range r.seq {
		out = append(out, *cloneOrder(r.orders[id]))
	}
	return out, nil
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		r.seq = append(r.seq, order.ID)
	}
	r.orders[order.ID] = *cloneOrder(*order)
	return nil
}

// cloneOrder deep-copies the line items so a caller mutating a returned
// order cannot reach into the store.
func cloneOrder(o domain.Order) *domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return &o
}

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	seq      []string
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]domain.Product)}
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.seq))
	for _, id := range r.seq {
		out = append(out, r.products[id])
	}
	return out, nil
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		r.seq = append(r.seq, product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
	seq        []string
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]domain.Category)}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Category, 0, len(r.seq))
	for _, id := range r.seq {
		out = append(out, r.categories[id])
	}
	return out, nil
}

func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		r.seq = append(r.seq, category.ID)
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	delete(r.categories, id)
	for i, sid := range r.seq {
		if sid == id {
			r.seq = append(r.seq[:i], r.seq[i+1:]...)
			break
		}
	}
	return nil
}

// RefundLedger is an in-memory PaymentGateway recording refunds per order.
type RefundLedger struct {
	mu      sync.Mutex
	refunds map[string][]Refund
}

type Refund struct {
	Amount float64
	Reason string
}

func NewRefundLedger() *RefundLedger {
	return &RefundLedger{refunds: make(map[string][]Refund)}
}

func (l *RefundLedger) RecordRefund(ctx context.Context, orderID string, amount float64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refunds[orderID] = append(l.refunds[orderID], Refund{Amount: amount, Reason: reason})
	return nil
}

// Refunds returns the refunds recorded for an order.
func (l *RefundLedger) Refunds(orderID string) []Refund {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Refund, len(l.refunds[orderID]))
	copy(out, l.refunds[orderID])
	return out
}
