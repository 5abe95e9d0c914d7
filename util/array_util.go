package util

/*
TransformSlice processes input slice s by calling the mapper callback for each
element and returning the slice of values returned by the callback.

Could be used for extracting single field values from slice of structs etc.
*/
func TransformSlice[S ~[]E, E any, V any](s S, mapper func(E) V) []V {
	r := make([]V, len(s))
	for i, v := range s {
		r[i] = mapper(v)
	}
	return r
}

// ContainsFunc reports whether any element of s satisfies eq.
func ContainsFunc[S ~[]E, E any](s S, eq func(E) bool) bool {
	for _, v := range s {
		if eq(v) {
			return true
		}
	}
	return false
}
