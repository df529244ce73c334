package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arvela/commerce-core/internal/adapters/storage/memory"
	"github.com/arvela/commerce-core/internal/adapters/storage/redisstock"
	"github.com/arvela/commerce-core/internal/adapters/storage/sqlite"
	"github.com/arvela/commerce-core/internal/core/domain"
	"github.com/arvela/commerce-core/internal/core/ports"
	"github.com/arvela/commerce-core/internal/core/service"
	"github.com/arvela/commerce-core/internal/infra/httpx"
	"github.com/arvela/commerce-core/internal/pkg/cache"
	"github.com/arvela/commerce-core/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "commerce-core"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var (
		orderRepo    ports.OrderRepository
		productRepo  ports.ProductRepository
		categoryRepo ports.CategoryRepository
		payments     ports.PaymentGateway
	)

	// SQLITE_PATH=memory runs entirely in-process, handy for local work.
	sqlitePath := getEnv("SQLITE_PATH", "./commerce.db")
	if sqlitePath == "memory" {
		orderRepo = memory.NewOrderRepository()
		productRepo = memory.NewProductRepository()
		categoryRepo = memory.NewCategoryRepository()
		payments = memory.NewRefundLedger()
		slog.Info("using in-memory storage")
	} else {
		store, err := sqlite.Open(sqlitePath)
		if err != nil {
			slog.Error("failed to open database", "path", sqlitePath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		orderRepo = store.Orders()
		productRepo = store.Products()
		categoryRepo = store.Categories()
		payments = store.Refunds()
		slog.Info("using sqlite storage", "path", sqlitePath)
	}

	// The Redis stock mirror is optional; services skip it when nil.
	var stockCache ports.StockCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		stockCache = redisstock.New(redis.NewClient(&redis.Options{Addr: addr}))
		slog.Info("stock mirror enabled", "addr", addr)
	}

	categoryCache := cache.NewTiered(
		func(c domain.Category) string { return c.ID },
		getDuration("CATEGORY_CACHE_TTL", 5*time.Minute),
		getInt("CATEGORY_CACHE_MAX_ENTRIES", 1024),
	)

	policy := domain.CancellationPolicy{
		AllowAfterDelivery: os.Getenv("ALLOW_POST_DELIVERY_CANCEL") == "true",
	}

	clock := ports.SystemClock{}
	ids := ports.UUIDGenerator{}

	orderSvc := service.NewOrderService(orderRepo, productRepo, payments, stockCache, clock, ids, policy)
	inventorySvc := service.NewInventoryService(productRepo, stockCache, clock)
	catalogSvc := service.NewCatalogService(categoryRepo, productRepo, categoryCache, clock, ids)

	router := httpx.NewRouter(httpx.NewHandler(orderSvc, inventorySvc, catalogSvc))

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("commerce-core running", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration, using fallback", "key", key, "fallback", fallback)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("invalid integer, using fallback", "key", key, "fallback", fallback)
	}
	return fallback
}
