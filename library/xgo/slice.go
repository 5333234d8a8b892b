package xgo

// SliceCopy returns a shallow copy that never aliases src. A nil or empty src yields an empty, non-nil slice.
func SliceCopy[T any](src []T) []T {
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}
