package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/arvela/commerce-core/internal/core/domain"
	"github.com/arvela/commerce-core/internal/core/ports"
	"github.com/arvela/commerce-core/internal/pkg/cache"
)

// CatalogService serves category reads through the tiered cache and keeps
// it coherent on writes. Concurrent misses for the same key are collapsed
// into a single repository fetch via singleflight.
type CatalogService struct {
	categories ports.CategoryRepository
	products   ports.ProductRepository
	cache      *cache.Tiered[string, domain.Category]
	group      singleflight.Group
	clock      ports.Clock
	ids        ports.IDGenerator
	tracer     trace.Tracer
}

func NewCatalogService(
	categories ports.CategoryRepository,
	products ports.ProductRepository,
	tiered *cache.Tiered[string, domain.Category],
	clock ports.Clock,
	ids ports.IDGenerator,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		cache:      tiered,
		clock:      clock,
		ids:        ids,
		tracer:     otel.Tracer(tracerName),
	}
}

// ListCategories returns all categories, served from the cache when the
// whole-collection snapshot is resident.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListCategories")
	defer span.End()

	if all, ok := s.cache.GetAll(); ok {
		return all, nil
	}

	v, err, _ := s.group.Do("categories:all", func() (any, error) {
		if all, ok := s.cache.GetAll(); ok {
			return all, nil
		}
		all, err := s.categories.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.PutAll(all)
		return all, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return v.([]domain.Category), nil
}

// GetCategory returns one category, consulting the per-key tier first
// (which promotes from a resident snapshot before falling back to the
// repository).
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetCategory")
	defer span.End()

	if cat, ok := s.cache.GetByID(id); ok {
		return &cat, nil
	}

	v, err, _ := s.group.Do("categories:"+id, func() (any, error) {
		if cat, ok := s.cache.GetByID(id); ok {
			return cat, nil
		}
		cat, err := s.categories.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cache.PutByID(cat.ID, *cat)
		return *cat, nil
	})
	if err != nil {
		return nil, err
	}
	cat := v.(domain.Category)
	return &cat, nil
}

// CreateCategory persists a new category and writes it through to the
// cache.
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateCategory")
	defer span.End()

	now := s.clock.Now()
	cat := &domain.Category{
		ID:          s.ids.NewID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Save(ctx, cat); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	s.cache.PutByID(cat.ID, *cat)

	slog.InfoContext(ctx, "category created", "category_id", cat.ID, "name", name)
	return cat, nil
}

// UpdateCategory persists the change and replaces the entry in both cache
// tiers so readers never see the stale value.
func (s *CatalogService) UpdateCategory(ctx context.Context, id, name, description string) (*domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateCategory")
	defer span.End()

	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cat.Name = name
	cat.Description = description
	cat.UpdatedAt = s.clock.Now()

	if err := s.categories.Save(ctx, cat); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	s.cache.PutByID(cat.ID, *cat)
	return cat, nil
}

// DeleteCategory removes the category from storage and evicts it from
// both cache tiers.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteCategory")
	defer span.End()

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateByID(id)

	slog.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}

// ProductFilter carries the optional narrowing criteria for a product
// search; zero values mean "no constraint".
type ProductFilter struct {
	ActiveOnly   bool
	InStockOnly  bool
	CategoryID   string
	NameContains string
}

// SearchProducts composes leaf specifications from the filter and applies
// them over the product collection.
func (s *CatalogService) SearchProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SearchProducts")
	defer span.End()

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	spec := domain.Specification[domain.Product](func(domain.Product) bool { return true })
	if filter.ActiveOnly {
		spec = domain.And(spec, domain.ProductIsActive())
	}
	if filter.InStockOnly {
		spec = domain.And(spec, domain.ProductInStock())
	}
	if filter.CategoryID != "" {
		spec = domain.And(spec, domain.ProductInCategory(filter.CategoryID))
	}
	if filter.NameContains != "" {
		spec = domain.And(spec, domain.ProductNameContains(filter.NameContains))
	}

	return domain.Filter(products, spec), nil
}
