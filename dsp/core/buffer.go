package core

// EnsureLen returns a slice with the requested length, reusing buf capacity
// if possible. Reused elements keep their old values.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}
