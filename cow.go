package treedi

import (
	"sync"
	"sync/atomic"
)

// COWSlice is an append-only slice whose readers never lock. Appends publish a new slice header,
// reusing the backing array while it has room, so a snapshot never observes later items.
type COWSlice[T any] struct {
	data atomic.Pointer[[]T]
	mu   sync.Mutex
}

func NewCOWSlice[T any]() *COWSlice[T] {
	cowSlice := &COWSlice[T]{}
	initial := make([]T, 0)
	cowSlice.data.Store(&initial)
	return cowSlice
}

// Append adds the item and returns its index.
func (r *COWSlice[T]) Append(item T) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.data.Load()
	next := append(current[:len(current):cap(current)], item)
	r.data.Store(&next)

	return len(next) - 1
}

func (r *COWSlice[T]) Get(idx int) (T, bool) {
	current := *r.data.Load()
	if idx < 0 || idx >= len(current) {
		var zero T
		return zero, false
	}
	return current[idx], true
}

func (r *COWSlice[T]) All() []T {
	return *r.data.Load()
}

func (r *COWSlice[T]) Len() int {
	return len(*r.data.Load())
}
