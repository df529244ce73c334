package domain

import (
	"strings"
	"time"
)

type ProductStatus string

const (
	ProductActive       ProductStatus = "ACTIVE"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
)

type Product struct {
	ID         string
	Name       string
	CategoryID string
	UnitPrice  float64
	Stock      Quantity
	Status     ProductStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Sellable reports whether the product can be advertised for sale.
// A discontinued product keeps its stock (adjustments still apply) but
// is never sellable.
func (p *Product) Sellable() bool {
	return p.Status == ProductActive && !p.Stock.IsZero()
}

// AdjustMode selects how AdjustStock combines the amount with the
// current quantity-on-hand.
type AdjustMode string

const (
	AdjustAdd    AdjustMode = "ADD"
	AdjustRemove AdjustMode = "REMOVE"
	AdjustSet    AdjustMode = "SET"
)

// AdjustStock applies amount to the product's quantity-on-hand.
//
//	ADD    — quantity += amount, never fails
//	REMOVE — quantity -= amount, *InsufficientStockError if amount exceeds
//	         the current quantity; the quantity is unchanged on failure
//	SET    — quantity = amount, no relation to the prior value
//
// On success the quantity is always ≥ 0. The caller persists the product.
func (p *Product) AdjustStock(amount Quantity, mode AdjustMode) error {
	switch mode {
	case AdjustAdd:
		p.Stock = p.Stock.Add(amount)
	case AdjustRemove:
		next, err := p.Stock.Sub(amount)
		if err != nil {
			return &InsufficientStockError{
				ProductID: p.ID,
				Requested: amount.Value(),
				Available: p.Stock.Value(),
			}
		}
		p.Stock = next
	case AdjustSet:
		p.Stock = amount
	default:
		return &InvalidAdjustModeError{Mode: mode}
	}
	return nil
}

// InvalidAdjustModeError reports an AdjustMode outside ADD/REMOVE/SET.
type InvalidAdjustModeError struct {
	Mode AdjustMode
}

func (e *InvalidAdjustModeError) Error() string {
	return "invalid stock adjustment mode: " + string(e.Mode)
}

// Leaf specifications over products.

func ProductIsActive() Specification[Product] {
	return func(p Product) bool { return p.Status == ProductActive }
}

func ProductInCategory(categoryID string) Specification[Product] {
	return func(p Product) bool { return p.CategoryID == categoryID }
}

func ProductNameContains(substr string) Specification[Product] {
	lowered := strings.ToLower(substr)
	return func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Name), lowered)
	}
}

func ProductInStock() Specification[Product] {
	return func(p Product) bool { return !p.Stock.IsZero() }
}
