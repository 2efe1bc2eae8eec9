package slices

// Map maps values of a slice using the specified mapper.
func Map[F any, T any](original []F, mapper func(F) T) []T {
	destination := make([]T, len(original))
	for i, item := range original {
		destination[i] = mapper(item)
	}
	return destination
}
