// Package set holds a minimal generic set used for in-flight bookkeeping.
package set

// Set represents a generic set data structure
type Set[T comparable] map[T]struct{}

// New creates a new empty set
func New[T comparable]() Set[T] {
	return make(Set[T])
}

// Add adds a value to the set, returning false if it was already present
func (s Set[T]) Add(value T) bool {
	if _, exists := s[value]; exists {
		return false
	}
	s[value] = struct{}{}
	return true
}

// Contains checks if a value exists in the set
func (s Set[T]) Contains(value T) bool {
	_, exists := s[value]
	return exists
}

// Remove removes a value from the set
func (s Set[T]) Remove(value T) {
	delete(s, value)
}

// Size returns the number of elements in the set
func (s Set[T]) Size() int {
	return len(s)
}
