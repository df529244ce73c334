package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arvela/commerce-core/internal/adapters/storage/memory"
	"github.com/arvela/commerce-core/internal/core/domain"
	"github.com/arvela/commerce-core/internal/core/ports"
	"github.com/arvela/commerce-core/internal/core/service"
	"github.com/arvela/commerce-core/internal/pkg/cache"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.ProductRepository) {
	t.Helper()

	orders := memory.NewOrderRepository()
	products := memory.NewProductRepository()
	categories := memory.NewCategoryRepository()
	ledger := memory.NewRefundLedger()

	clock := ports.SystemClock{}
	ids := ports.UUIDGenerator{}
	categoryCache := cache.NewTiered(func(c domain.Category) string { return c.ID }, time.Minute, 64)

	orderSvc := service.NewOrderService(orders, products, ledger, nil, clock, ids, domain.CancellationPolicy{})
	inventorySvc := service.NewInventoryService(products, nil, clock)
	catalogSvc := service.NewCatalogService(categories, products, categoryCache, clock, ids)

	srv := httptest.NewServer(NewRouter(NewHandler(orderSvc, inventorySvc, catalogSvc)))
	t.Cleanup(srv.Close)
	return srv, products
}

func seedProduct(t *testing.T, products *memory.ProductRepository, id string, stock int, price float64) {
	t.Helper()
	qty, _ := domain.NewQuantity(stock)
	err := products.Save(context.Background(), &domain.Product{
		ID: id, Name: id, UnitPrice: price, Stock: qty, Status: domain.ProductActive,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestCheckoutAndCancelFlow(t *testing.T) {
	srv, products := newTestServer(t)
	seedProduct(t, products, "p1", 10, 25.0)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", CreateOrderRequest{
		CustomerID: "cust-1",
		Items:      []OrderItemRequest{{ProductID: "p1", Quantity: 2}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	order := decode[OrderResponse](t, resp)
	if order.Status != "PENDING" || order.Total != 50.0 {
		t.Errorf("unexpected order: %+v", order)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/orders/"+order.ID+"/cancel", CancelOrderRequest{
		RefundAmount: 50.0,
		RefundReason: "customer request",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	cancelled := decode[OrderResponse](t, resp)
	if cancelled.Status != "CANCELLED" {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}

	stored, err := products.FindByID(context.Background(), "p1")
	if err != nil || stored.Stock.Value() != 10 {
		t.Errorf("reserved stock not released: %d (%v)", stored.Stock.Value(), err)
	}
}

func TestUpdateStatus_ErrorMapping(t *testing.T) {
	srv, products := newTestServer(t)
	seedProduct(t, products, "p1", 5, 4.0)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", CreateOrderRequest{
		CustomerID: "cust-1",
		Items:      []OrderItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	order := decode[OrderResponse](t, resp)

	// PENDING -> SHIPPED is illegal.
	resp = doJSON(t, http.MethodPatch, srv.URL+"/orders/"+order.ID+"/status", UpdateOrderStatusRequest{Status: "SHIPPED"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for illegal transition, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, srv.URL+"/orders/missing/status", UpdateOrderStatusRequest{Status: "CONFIRMED"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown order, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, srv.URL+"/orders/"+order.ID+"/status", UpdateOrderStatusRequest{Status: "BOGUS"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdjustStock_InsufficientIsConflict(t *testing.T) {
	srv, products := newTestServer(t)
	seedProduct(t, products, "p1", 2, 4.0)

	resp := doJSON(t, http.MethodPost, srv.URL+"/products/p1/stock", AdjustStockRequest{Amount: 5, Mode: "REMOVE"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["code"] != "insufficient_stock" {
		t.Errorf("expected insufficient_stock code, got %v", body["code"])
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/categories", CategoryRequest{Name: "Kitchen"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decode[CategoryResponse](t, resp)

	resp = doJSON(t, http.MethodGet, srv.URL+"/categories/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decode[CategoryResponse](t, resp)
	if got.Name != "Kitchen" {
		t.Errorf("expected Kitchen, got %s", got.Name)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/categories/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/categories/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
