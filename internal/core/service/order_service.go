// Package service holds the use-case orchestration layer: it loads
// aggregates from the repositories, drives them through the domain state
// machines, and persists the result. Instrumentation (spans, logs) lives
// here, at use-case entry and exit — the domain stays pure.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/arvela/commerce-core/internal/core/domain"
	"github.com/arvela/commerce-core/internal/core/ports"
)

const tracerName = "commerce-core/service"

// CreateOrderItem is one checkout line.
type CreateOrderItem struct {
	ProductID string
	Quantity  int
}

// RefundCommand describes the refund recorded during a cancel-with-refund.
type RefundCommand struct {
	Amount float64
	Reason string
}

type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	payments ports.PaymentGateway
	stock    ports.StockCache // nil-safe: mirroring skipped if nil
	clock    ports.Clock
	ids      ports.IDGenerator
	policy   domain.CancellationPolicy
	tracer   trace.Tracer
}

// NewOrderService wires the order use cases. stock may be nil when no
// fast-path mirror is configured.
func NewOrderService(
	orders ports.OrderRepository,
	products ports.ProductRepository,
	payments ports.PaymentGateway,
	stock ports.StockCache,
	clock ports.Clock,
	ids ports.IDGenerator,
	policy domain.CancellationPolicy,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		payments: payments,
		stock:    stock,
		clock:    clock,
		ids:      ids,
		policy:   policy,
		tracer:   otel.Tracer(tracerName),
	}
}

// CreateOrder completes a checkout: it reserves stock for every line and
// persists a new PENDING order. Reservations already taken are released
// again when a later line fails, so a failed checkout leaves stock
// untouched. An idempotency key, when provided, guards against duplicate
// submissions of the same checkout.
func (s *OrderService) CreateOrder(ctx context.Context, customerID, idempotencyKey string, items []CreateOrderItem) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if s.stock != nil && idempotencyKey != "" {
		ok, err := s.stock.SetIdempotency(ctx, "checkout:"+idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID:         s.ids.NewID(),
		CustomerID: customerID,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Reserve stock line by line; on failure, compensate the lines
	// already reserved (in reverse order) before returning.
	var reserved []*domain.Product
	for _, it := range items {
		product, err := s.reserveLine(ctx, it)
		if err != nil {
			s.releaseReserved(ctx, reserved, items)
			return nil, err
		}
		reserved = append(reserved, product)
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: product.UnitPrice,
		})
		order.Total += float64(it.Quantity) * product.UnitPrice
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.releaseReserved(ctx, reserved, items)
		return nil, fmt.Errorf("save order: %w", err)
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID, "customer_id", customerID, "total", order.Total)
	return order, nil
}

func (s *OrderService) reserveLine(ctx context.Context, it CreateOrderItem) (*domain.Product, error) {
	amount, err := domain.NewQuantity(it.Quantity)
	if err != nil || amount.IsZero() {
		return nil, fmt.Errorf("line for product %s: quantity must be positive", it.ProductID)
	}

	product, err := s.products.FindByID(ctx, it.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != domain.ProductActive {
		return nil, fmt.Errorf("product %s is not for sale", product.ID)
	}
	if err := product.AdjustStock(amount, domain.AdjustRemove); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product %s: %w", product.ID, err)
	}
	s.mirrorStock(ctx, product)
	return product, nil
}

// releaseReserved undoes successful reservations in LIFO order. Release
// failures are logged, not returned: the checkout error that triggered
// the rollback is the one the caller needs.
func (s *OrderService) releaseReserved(ctx context.Context, reserved []*domain.Product, items []CreateOrderItem) {
	for i := len(reserved) - 1; i >= 0; i-- {
		product := reserved[i]
		amount, _ := domain.NewQuantity(items[i].Quantity)
		if err := product.AdjustStock(amount, domain.AdjustAdd); err != nil {
			slog.ErrorContext(ctx, "failed to release reservation",
				"product_id", product.ID, "error", err)
			continue
		}
		if err := s.products.Save(ctx, product); err != nil {
			slog.ErrorContext(ctx, "failed to persist released reservation",
				"product_id", product.ID, "error", err)
			continue
		}
		s.mirrorStock(ctx, product)
	}
}

// UpdateStatus drives the order through a guarded transition. Moving to
// CANCELLED releases the stock reserved for the order's line items; use
// Cancel when a refund must be recorded as part of the cancellation.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, target domain.OrderStatus) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if target == domain.StatusCancelled {
		return s.cancel(ctx, orderID, nil)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(target, s.policy, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	slog.InfoContext(ctx, "order status updated", "order_id", order.ID, "status", order.Status)
	return order, nil
}

// Cancel cancels the order, recording the refund first. Either the refund
// is recorded and the order cancelled, or neither is visible: a refund
// failure (validation or gateway) leaves the order in its prior state,
// and an illegal transition is rejected before the refund is recorded.
func (s *OrderService) Cancel(ctx context.Context, orderID string, refund *RefundCommand) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Cancel")
	defer span.End()

	return s.cancel(ctx, orderID, refund)
}

func (s *OrderService) cancel(ctx context.Context, orderID string, refund *RefundCommand) (*domain.Order, error) {
	if refund != nil && refund.Amount <= 0 {
		return nil, &domain.RefundValidationError{Reason: "amount must be positive"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Legality is checked before the refund is recorded so an illegal
	// cancellation never leaves a refund behind.
	if !domain.CanTransition(order.Status, domain.StatusCancelled, s.policy) {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: domain.StatusCancelled}
	}

	if refund != nil {
		if err := s.payments.RecordRefund(ctx, order.ID, refund.Amount, refund.Reason); err != nil {
			return nil, fmt.Errorf("record refund: %w", err)
		}
	}

	if err := order.TransitionTo(domain.StatusCancelled, s.policy, s.clock.Now()); err != nil {
		return nil, err
	}

	s.releaseOrderStock(ctx, order)

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	slog.InfoContext(ctx, "order cancelled",
		"order_id", order.ID, "refunded", refund != nil)
	return order, nil
}

// releaseOrderStock returns the reserved quantities of every line item to
// inventory. A line whose product has since been deleted is skipped with
// a log entry; the cancellation itself still proceeds.
func (s *OrderService) releaseOrderStock(ctx context.Context, order *domain.Order) {
	for _, it := range order.Items {
		product, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			slog.WarnContext(ctx, "cannot release stock for line item",
				"order_id", order.ID, "product_id", it.ProductID, "error", err)
			continue
		}
		amount, err := domain.NewQuantity(it.Quantity)
		if err != nil {
			continue
		}
		if err := product.AdjustStock(amount, domain.AdjustAdd); err != nil {
			slog.ErrorContext(ctx, "stock release failed",
				"order_id", order.ID, "product_id", it.ProductID, "error", err)
			continue
		}
		if err := s.products.Save(ctx, product); err != nil {
			slog.ErrorContext(ctx, "failed to persist stock release",
				"order_id", order.ID, "product_id", it.ProductID, "error", err)
			continue
		}
		s.mirrorStock(ctx, product)
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// ListByCustomer returns a customer's orders, optionally narrowed to a
// single status with the specification algebra.
func (s *OrderService) ListByCustomer(ctx context.Context, customerID string, status domain.OrderStatus) ([]domain.Order, error) {
	orders, err := s.orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return orders, nil
	}
	return domain.Filter(orders, domain.OrderHasStatus(status)), nil
}

func (s *OrderService) mirrorStock(ctx context.Context, product *domain.Product) {
	if s.stock == nil {
		return
	}
	if err := s.stock.SetStock(ctx, product.ID, product.Stock.Value()); err != nil {
		slog.WarnContext(ctx, "stock mirror update failed",
			"product_id", product.ID, "error", err)
	}
}
