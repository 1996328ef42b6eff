package reactive

import "context"

// List is an observable ordered sequence. Every mutation stores a fresh slice,
// so snapshots handed to subscribers are never modified afterwards. Receivers
// must treat them as read-only.
type List[T any] struct {
	cell *Cell[[]T]
}

// NewList returns a list holding a copy of values.
func NewList[T any](values ...T) *List[T] {
	return &List[T]{cell: NewCell(clone(values))}
}

// Snapshot returns a copy of the current elements.
func (l *List[T]) Snapshot() []T {
	return clone(l.cell.Get())
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return len(l.cell.Get())
}

// IsEmpty reports whether the list has no elements.
func (l *List[T]) IsEmpty() bool {
	return l.Len() == 0
}

// Replace swaps the whole sequence and returns the previous elements.
func (l *List[T]) Replace(values []T) []T {
	return l.cell.Replace(clone(values))
}

// Clear removes all elements.
func (l *List[T]) Clear() {
	l.cell.Set(nil)
}

// Push appends value.
func (l *List[T]) Push(value T) {
	l.Mutate(func(items []T) []T { return append(items, value) })
}

// Mutate applies fn to a private copy of the elements under the write lock and
// stores the result.
func (l *List[T]) Mutate(fn func(items []T) []T) {
	l.cell.Update(func(current []T) []T {
		return fn(clone(current))
	})
}

// Read calls fn with the current elements under the read lock.
func (l *List[T]) Read(fn func(items []T)) {
	l.cell.Read(fn)
}

// Subscribe streams snapshots of the list, see Cell.Subscribe.
func (l *List[T]) Subscribe(ctx context.Context) <-chan []T {
	return l.cell.Subscribe(ctx)
}

func clone[T any](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	out := make([]T, len(values))
	copy(out, values)
	return out
}
