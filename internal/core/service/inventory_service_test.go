package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arvela/commerce-core/internal/adapters/storage/memory"
	"github.com/arvela/commerce-core/internal/core/domain"
)

func newInventoryFixture(t *testing.T, stock int) (*InventoryService, *memory.ProductRepository, *mockStockCache) {
	t.Helper()
	products := memory.NewProductRepository()
	qty, _ := domain.NewQuantity(stock)
	err := products.Save(context.Background(), &domain.Product{
		ID: "p1", Name: "widget", Stock: qty, Status: domain.ProductActive,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	mirror := newMockStockCache()
	svc := NewInventoryService(products, mirror, fixedClock{t: time.Now()})
	return svc, products, mirror
}

func TestAdjustStock_AddPersistsAndMirrors(t *testing.T) {
	svc, products, mirror := newInventoryFixture(t, 5)

	product, err := svc.AdjustStock(context.Background(), "p1", 3, domain.AdjustAdd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Stock.Value() != 8 {
		t.Errorf("expected 8, got %d", product.Stock.Value())
	}

	stored, _ := products.FindByID(context.Background(), "p1")
	if stored.Stock.Value() != 8 {
		t.Errorf("adjustment not persisted: %d", stored.Stock.Value())
	}
	if mirror.stock["p1"] != 8 {
		t.Errorf("mirror not updated: %d", mirror.stock["p1"])
	}
}

func TestAdjustStock_SetExact(t *testing.T) {
	svc, products, _ := newInventoryFixture(t, 5)

	if _, err := svc.AdjustStock(context.Background(), "p1", 42, domain.AdjustSet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := products.FindByID(context.Background(), "p1")
	if stored.Stock.Value() != 42 {
		t.Errorf("expected 42, got %d", stored.Stock.Value())
	}
}

func TestAdjustStock_NegativeAmountFailsBeforeLoad(t *testing.T) {
	svc, products, _ := newInventoryFixture(t, 5)

	_, err := svc.AdjustStock(context.Background(), "p1", -1, domain.AdjustSet)
	if !errors.Is(err, domain.ErrNegativeQuantity) {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
	stored, _ := products.FindByID(context.Background(), "p1")
	if stored.Stock.Value() != 5 {
		t.Errorf("stock mutated on rejected amount: %d", stored.Stock.Value())
	}
}

func TestAdjustStock_RemoveInsufficientLeavesStoreUntouched(t *testing.T) {
	svc, products, mirror := newInventoryFixture(t, 2)

	_, err := svc.AdjustStock(context.Background(), "p1", 5, domain.AdjustRemove)

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	stored, _ := products.FindByID(context.Background(), "p1")
	if stored.Stock.Value() != 2 {
		t.Errorf("stock mutated on failure: %d", stored.Stock.Value())
	}
	if _, ok := mirror.stock["p1"]; ok {
		t.Error("mirror written on failed adjustment")
	}
}

func TestAdjustStock_UnknownProduct(t *testing.T) {
	svc, _, _ := newInventoryFixture(t, 2)

	_, err := svc.AdjustStock(context.Background(), "missing", 1, domain.AdjustAdd)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
