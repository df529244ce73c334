package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/arvela/commerce-core/internal/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "commerce.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	repo := store.Orders()
	ctx := context.Background()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	order := &domain.Order{
		ID:         "o1",
		CustomerID: "cust-1",
		Status:     domain.StatusPending,
		Total:      27.5,
		Items: []domain.OrderItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: 10.0},
			{ProductID: "p2", Quantity: 1, UnitPrice: 7.5},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Save(ctx, order); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.FindByID(ctx, "o1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.CustomerID != "cust-1" || loaded.Status != domain.StatusPending || loaded.Total != 27.5 {
		t.Errorf("order fields lost: %+v", loaded)
	}
	if len(loaded.Items) != 2 || loaded.Items[0].ProductID != "p1" || loaded.Items[1].Quantity != 1 {
		t.Errorf("line items lost or reordered: %+v", loaded.Items)
	}
	if !loaded.CreatedAt.Equal(now) {
		t.Errorf("timestamp drift: %v vs %v", loaded.CreatedAt, now)
	}

	// Upsert: a status change must overwrite, not duplicate.
	order.Status = domain.StatusConfirmed
	order.UpdatedAt = now.Add(time.Minute)
	if err := repo.Save(ctx, order); err != nil {
		t.Fatalf("resave: %v", err)
	}
	reloaded, _ := repo.FindByID(ctx, "o1")
	if reloaded.Status != domain.StatusConfirmed {
		t.Errorf("upsert did not apply: %s", reloaded.Status)
	}
}

func TestOrderRepository_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Orders().FindByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderRepository_FindByCustomer(t *testing.T) {
	store := openTestStore(t)
	repo := store.Orders()
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	for i, customer := range []string{"cust-1", "cust-2", "cust-1"} {
		order := &domain.Order{
			ID:         []string{"o1", "o2", "o3"}[i],
			CustomerID: customer,
			Status:     domain.StatusPending,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Save(ctx, order); err != nil {
			t.Fatalf("save %s: %v", order.ID, err)
		}
	}

	orders, err := repo.FindByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("find by customer: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o1" || orders[1].ID != "o3" {
		t.Errorf("expected [o1 o3], got %+v", orders)
	}
}

func TestProductRepository_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	repo := store.Products()
	ctx := context.Background()

	stock, _ := domain.NewQuantity(7)
	now := time.Now().UTC().Truncate(time.Second)
	product := &domain.Product{
		ID: "p1", Name: "Blue Mug", CategoryID: "kitchen",
		UnitPrice: 9.5, Stock: stock, Status: domain.ProductActive,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Save(ctx, product); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.Stock.Value() != 7 || loaded.Status != domain.ProductActive || loaded.CategoryID != "kitchen" {
		t.Errorf("product fields lost: %+v", loaded)
	}
}

func TestCategoryRepository_CRUD(t *testing.T) {
	store := openTestStore(t)
	repo := store.Categories()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, c := range []domain.Category{
		{ID: "c1", Name: "Kitchen", CreatedAt: now, UpdatedAt: now},
		{ID: "c2", Name: "Lighting", CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)},
	} {
		c := c
		if err := repo.Save(ctx, &c); err != nil {
			t.Fatalf("save %s: %v", c.ID, err)
		}
	}

	all, err := repo.FindAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 categories, got %d (%v)", len(all), err)
	}
	if all[0].ID != "c1" || all[1].ID != "c2" {
		t.Errorf("repository order not stable: %+v", all)
	}

	if err := repo.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("double delete must report not found, got %v", err)
	}
}

func TestRefundLedger_Record(t *testing.T) {
	store := openTestStore(t)

	err := store.Refunds().RecordRefund(context.Background(), "o1", 50.0, "customer request")
	if err != nil {
		t.Fatalf("record refund: %v", err)
	}
}
