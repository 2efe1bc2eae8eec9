// Package option contains utility to use the variadic options pattern
package option

// Option represents a function that modifies options of type T.
type Option[T any] func(opts *T)

// Build applies a series of options to the default options struct and returns the modified result.
func Build[T any](defaultOpts *T, opts ...Option[T]) *T {
	for _, opt := range opts {
		if opt != nil {
			opt(defaultOpts)
		}
	}
	return defaultOpts
}

// Prepend returns a new option list where the given defaults run before the caller supplied options,
// so callers can still override them.
func Prepend[T any](opts []Option[T], defaults ...Option[T]) []Option[T] {
	all := make([]Option[T], 0, len(defaults)+len(opts))
	all = append(all, defaults...)
	return append(all, opts...)
}
