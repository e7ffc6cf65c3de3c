package common

// Coalesce picks the first value that is not the zero value of T. Options and loaders use it to
// fall back to a default when a setting is left empty.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
