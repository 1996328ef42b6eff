package reactive

import (
	"context"
	"sync"
)

// Cell holds a value of type T and notifies subscribers on every write.
type Cell[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID uint64
	subs   map[uint64]chan T
}

// NewCell returns a cell holding value.
func NewCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores value and notifies subscribers.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.notifyLocked()
}

// Replace stores value and returns the previous one.
func (c *Cell[T]) Replace(value T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.value
	c.value = value
	c.notifyLocked()
	return old
}

// SetIfChanged stores value only when equal reports a difference from the
// current value. It returns true when the value was written.
func (c *Cell[T]) SetIfChanged(value T, equal func(a, b T) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if equal(c.value, value) {
		return false
	}
	c.value = value
	c.notifyLocked()
	return true
}

// SetNeq is SetIfChanged for comparable types.
func SetNeq[T comparable](c *Cell[T], value T) bool {
	return c.SetIfChanged(value, func(a, b T) bool { return a == b })
}

// Update replaces the value with fn(current) while holding the write lock.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = fn(c.value)
	c.notifyLocked()
}

// Read calls fn with the current value while holding the read lock.
func (c *Cell[T]) Read(fn func(T)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.value)
}

// Subscribe returns a channel that receives the current value immediately and
// the latest value after each change. The channel is closed once ctx is done.
// Calling Subscribe again restarts the sequence from the current value.
func (c *Cell[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	c.mu.Lock()
	if c.subs == nil {
		c.subs = make(map[uint64]chan T)
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	ch <- c.value
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subs, id)
		close(ch)
		c.mu.Unlock()
	}()
	return ch
}

func (c *Cell[T]) notifyLocked() {
	for _, ch := range c.subs {
		offer(ch, c.value)
	}
}

// offer replaces any undelivered snapshot with value. Only the writer sends,
// and it holds the cell lock, so the second send cannot block.
func offer[T any](ch chan T, value T) {
	select {
	case ch <- value:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- value:
	default:
	}
}
