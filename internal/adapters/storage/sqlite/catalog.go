package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arvela/commerce-core/internal/core/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
		SELECT id, name, category_id, unit_price, stock, status, created_at, updated_at
		FROM   products
		WHERE  id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find product %q: %w", id, err)
	}
	return product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	const q = `
		SELECT id, name, category_id, unit_price, stock, status, created_at, updated_at
		FROM   products
		ORDER  BY created_at, id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		out = append(out, *product)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	const q = `
		INSERT INTO products (id, name, category_id, unit_price, stock, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category_id = excluded.category_id,
			unit_price = excluded.unit_price,
			stock = excluded.stock,
			status = excluded.status,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, q,
		product.ID, product.Name, product.CategoryID, product.UnitPrice,
		product.Stock.Value(), string(product.Status),
		formatRFC3339(product.CreatedAt), formatRFC3339(product.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save product %q: %w", product.ID, err)
	}
	return nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product              domain.Product
		stock                int
		status               string
		createdAt, updatedAt string
	)
	err := row.Scan(&product.ID, &product.Name, &product.CategoryID,
		&product.UnitPrice, &stock, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	// The stock column carries a CHECK (stock >= 0) constraint, so the
	// Quantity construction cannot fail on a well-formed row.
	if product.Stock, err = domain.NewQuantity(stock); err != nil {
		return nil, err
	}
	product.Status = domain.ProductStatus(status)
	if product.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	if product.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
		return nil, err
	}
	return &product, nil
}

type CategoryRepository struct {
	db *sql.DB
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	const q = `
		SELECT id, name, description, created_at, updated_at
		FROM   categories
		WHERE  id = ?`

	category, err := scanCategory(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find category %q: %w", id, err)
	}
	return category, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	const q = `
		SELECT id, name, description, created_at, updated_at
		FROM   categories
		ORDER  BY created_at, id`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan category: %w", err)
		}
		out = append(out, *category)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) error {
	const q = `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, q,
		category.ID, category.Name, category.Description,
		formatRFC3339(category.CreatedAt), formatRFC3339(category.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save category %q: %w", category.ID, err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete category %q: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		category             domain.Category
		createdAt, updatedAt string
	)
	err := row.Scan(&category.ID, &category.Name, &category.Description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if category.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	if category.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

// RefundLedger records refunds in the append-only refunds table.
type RefundLedger struct {
	db *sql.DB
}

func (l *RefundLedger) RecordRefund(ctx context.Context, orderID string, amount float64, reason string) error {
	const q = `
		INSERT INTO refunds (order_id, amount, reason, recorded_at)
		VALUES (?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, q, orderID, amount, reason, formatRFC3339(time.Now()))
	if err != nil {
		return fmt.Errorf("sqlite: record refund for %q: %w", orderID, err)
	}
	return nil
}
