package domain

// Quantity is a non-negative stock count. The zero value is a valid
// quantity of zero. Arithmetic never mutates an operand; operations that
// would produce a negative result fail instead.
type Quantity struct {
	value int
}

// NewQuantity builds a Quantity from v, rejecting negatives.
func NewQuantity(v int) (Quantity, error) {
	if v < 0 {
		return Quantity{}, ErrNegativeQuantity
	}
	return Quantity{value: v}, nil
}

// Value returns the wrapped count.
func (q Quantity) Value() int {
	return q.value
}

// IsZero reports whether the quantity is exactly zero.
func (q Quantity) IsZero() bool {
	return q.value == 0
}

// Add returns q + other. Both operands are non-negative, so the sum
// cannot underflow and always succeeds.
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value + other.value}
}

// Sub returns q - other, or ErrNegativeQuantity if the result would drop
// below zero. q is left unchanged either way.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if other.value > q.value {
		return Quantity{}, ErrNegativeQuantity
	}
	return Quantity{value: q.value - other.value}, nil
}
