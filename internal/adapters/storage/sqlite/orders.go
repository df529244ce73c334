package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arvela/commerce-core/internal/core/domain"
)

// OrderRepository persists order aggregates with their line items in a
// single transaction so a reader never sees an order without its lines.
type OrderRepository struct {
	db *sql.DB
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
		SELECT id, customer_id, status, total, created_at, updated_at
		FROM   orders
		WHERE  id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const q = `
		SELECT id, customer_id, status, total, created_at, updated_at
		FROM   orders
		WHERE  customer_id = ?
		ORDER  BY created_at, id`

	return r.queryOrders(ctx, q, customerID)
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	const q = `
		SELECT id, customer_id, status, total, created_at, updated_at
		FROM   orders
		ORDER  BY created_at, id`

	return r.queryOrders(ctx, q)
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO orders (id, customer_id, status, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			total = excluded.total,
			updated_at = excluded.updated_at`

	_, err = tx.ExecContext(ctx, upsert,
		order.ID, order.CustomerID, string(order.Status), order.Total,
		formatRFC3339(order.CreatedAt), formatRFC3339(order.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save order %q: %w", order.ID, err)
	}

	// Line items are immutable after creation; rewrite them wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, order.ID); err != nil {
		return fmt.Errorf("sqlite: clear items for %q: %w", order.ID, err)
	}
	for i, it := range order.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, line_no, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			order.ID, i, it.ProductID, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("sqlite: save item %d for %q: %w", i, order.ID, err)
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) queryOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
		out = append(out, *order)
	}
	return out, rows.Err()
}

func (r *OrderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	const q = `
		SELECT product_id, quantity, unit_price
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY line_no`

	rows, err := r.db.QueryContext(ctx, q, order.ID)
	if err != nil {
		return fmt.Errorf("sqlite: load items for %q: %w", order.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return fmt.Errorf("sqlite: scan item for %q: %w", order.ID, err)
		}
		order.Items = append(order.Items, it)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order                domain.Order
		status               string
		createdAt, updatedAt string
	)
	err := row.Scan(&order.ID, &order.CustomerID, &status, &order.Total, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	if order.CreatedAt, err = parseRFC3339(createdAt); err != nil {
		return nil, err
	}
	if order.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
		return nil, err
	}
	return &order, nil
}
