package domain

// Specification is a pure predicate over T. Leaves must be deterministic
// and side-effect free; combinators rely on that for their short-circuit
// semantics. A Specification holds no mutable state and is safe to reuse
// across repeated evaluations and concurrent readers.
type Specification[T any] func(T) bool

// And combines two specifications; b is not evaluated when a is false.
func And[T any](a, b Specification[T]) Specification[T] {
	return func(v T) bool {
		return a(v) && b(v)
	}
}

// Or combines two specifications; b is not evaluated when a is true.
func Or[T any](a, b Specification[T]) Specification[T] {
	return func(v T) bool {
		return a(v) || b(v)
	}
}

// Not inverts a specification.
func Not[T any](a Specification[T]) Specification[T] {
	return func(v T) bool {
		return !a(v)
	}
}

// Filter returns the items satisfying spec, preserving input order.
func Filter[T any](items []T, spec Specification[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if spec(it) {
			out = append(out, it)
		}
	}
	return out
}
