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

// InventoryService exposes administrative stock management. Every
// successful domain mutation is persisted immediately and mirrored to the
// stock cache when one is configured.
type InventoryService struct {
	products ports.ProductRepository
	stock    ports.StockCache // nil-safe
	clock    ports.Clock
	tracer   trace.Tracer
}

func NewInventoryService(products ports.ProductRepository, stock ports.StockCache, clock ports.Clock) *InventoryService {
	return &InventoryService{
		products: products,
		stock:    stock,
		clock:    clock,
		tracer:   otel.Tracer(tracerName),
	}
}

// AdjustStock applies amount to the product's quantity-on-hand in the
// given mode. A negative amount fails at Quantity construction, before
// the product is even loaded.
func (s *InventoryService) AdjustStock(ctx context.Context, productID string, amount int, mode domain.AdjustMode) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.AdjustStock")
	defer span.End()

	qty, err := domain.NewQuantity(amount)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.AdjustStock(qty, mode); err != nil {
		return nil, err
	}
	product.UpdatedAt = s.clock.Now()

	if err := s.products.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product %s: %w", productID, err)
	}

	if s.stock != nil {
		if err := s.stock.SetStock(ctx, product.ID, product.Stock.Value()); err != nil {
			slog.WarnContext(ctx, "stock mirror update failed",
				"product_id", product.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "stock adjusted",
		"product_id", product.ID, "mode", mode, "amount", amount, "on_hand", product.Stock.Value())
	return product, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}
