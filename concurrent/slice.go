package concurrent

import "sync"

// Slice is an append-only slice safe for use from several goroutines, mostly used by tests
// collecting what concurrent resolutions produced.
type Slice[T any] struct {
	inner []T
	mu    sync.RWMutex
}

// NewSlice creates a new concurrent slice.
func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{
		inner: make([]T, 0),
	}
}

// Append adds an element to the slice in a thread-safe manner.
func (s *Slice[T]) Append(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner = append(s.inner, v)
}

// Snapshot returns a copy of the current slice contents.
func (s *Slice[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, len(s.inner))
	copy(result, s.inner)
	return result
}
