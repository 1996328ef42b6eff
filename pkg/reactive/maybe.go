package reactive

// Maybe is an optional value.
type Maybe[T any] struct {
	Value T
	Valid bool
}

// Some wraps a present value.
func Some[T any](value T) Maybe[T] {
	return Maybe[T]{Value: value, Valid: true}
}

// None returns an absent value.
func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// Get returns the value and whether it is present.
func (m Maybe[T]) Get() (T, bool) {
	return m.Value, m.Valid
}

// OrElse returns the value or fallback when absent.
func (m Maybe[T]) OrElse(fallback T) T {
	if m.Valid {
		return m.Value
	}
	return fallback
}

// NewOption returns a cell holding an optional value.
func NewOption[T any](initial Maybe[T]) *Cell[Maybe[T]] {
	return NewCell(initial)
}

// MaybeEqual compares two optional values with eq.
func MaybeEqual[T any](eq func(a, b T) bool) func(a, b Maybe[T]) bool {
	return func(a, b Maybe[T]) bool {
		if a.Valid != b.Valid {
			return false
		}
		if !a.Valid {
			return true
		}
		return eq(a.Value, b.Value)
	}
}
