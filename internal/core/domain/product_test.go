package domain

import (
	"errors"
	"testing"
)

func newTestProduct(t *testing.T, stock int) *Product {
	t.Helper()
	qty, err := NewQuantity(stock)
	if err != nil {
		t.Fatalf("bad test stock: %v", err)
	}
	return &Product{ID: "p1", Name: "widget", Stock: qty, Status: ProductActive}
}

func TestAdjustStock_Add(t *testing.T) {
	p := newTestProduct(t, 5)
	amount, _ := NewQuantity(3)

	if err := p.AdjustStock(amount, AdjustAdd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stock.Value() != 8 {
		t.Errorf("expected 8, got %d", p.Stock.Value())
	}
}

func TestAdjustStock_Remove(t *testing.T) {
	p := newTestProduct(t, 5)
	amount, _ := NewQuantity(5)

	if err := p.AdjustStock(amount, AdjustRemove); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stock.Value() != 0 {
		t.Errorf("expected 0, got %d", p.Stock.Value())
	}
}

func TestAdjustStock_RemoveInsufficient(t *testing.T) {
	p := newTestProduct(t, 2)
	amount, _ := NewQuantity(5)

	err := p.AdjustStock(amount, AdjustRemove)

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.ProductID != "p1" || insufficient.Requested != 5 || insufficient.Available != 2 {
		t.Errorf("error must report product, requested and available: %+v", insufficient)
	}
	if p.Stock.Value() != 2 {
		t.Errorf("stock mutated on failure: %d", p.Stock.Value())
	}
}

func TestAdjustStock_Set(t *testing.T) {
	p := newTestProduct(t, 5)
	amount, _ := NewQuantity(0)

	if err := p.AdjustStock(amount, AdjustSet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Stock.Value() != 0 {
		t.Errorf("expected 0, got %d", p.Stock.Value())
	}
}

func TestAdjustStock_InvalidMode(t *testing.T) {
	p := newTestProduct(t, 5)
	amount, _ := NewQuantity(1)

	err := p.AdjustStock(amount, AdjustMode("MULTIPLY"))

	var invalid *InvalidAdjustModeError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAdjustModeError, got %v", err)
	}
	if p.Stock.Value() != 5 {
		t.Errorf("stock mutated on failure: %d", p.Stock.Value())
	}
}

func TestAdjustStock_DiscontinuedStillAdjustable(t *testing.T) {
	p := newTestProduct(t, 5)
	p.Status = ProductDiscontinued
	amount, _ := NewQuantity(2)

	if err := p.AdjustStock(amount, AdjustRemove); err != nil {
		t.Fatalf("discontinued products must still accept adjustments: %v", err)
	}
	if p.Sellable() {
		t.Error("discontinued product must not be sellable")
	}
}

func TestSellable(t *testing.T) {
	p := newTestProduct(t, 1)
	if !p.Sellable() {
		t.Error("active product with stock should be sellable")
	}

	empty := newTestProduct(t, 0)
	if empty.Sellable() {
		t.Error("product without stock should not be sellable")
	}
}
