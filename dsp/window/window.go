package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
)

// Generate returns symmetric window coefficients of the given length. A
// length of one yields [1].
func Generate(t Type, length int) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	for i := range out {
		out[i] = evalWindow(t, float64(i)/float64(length-1))
	}

	return out
}

// ApplyCoefficientsInPlace multiplies samples with coefficients in place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return ErrLengthMismatch
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

// Cache memoizes coefficient slices by length. Grain-based processors ask
// for many windows of a handful of distinct sizes. Returned slices are
// shared and must not be modified. A Cache is not safe for concurrent use.
type Cache struct {
	typ    Type
	bySize map[int][]float64
}

// NewCache returns an empty cache generating windows of type t.
func NewCache(t Type) *Cache {
	return &Cache{typ: t, bySize: make(map[int][]float64)}
}

// Get returns the coefficients for size, generating them on first use.
func (c *Cache) Get(size int) []float64 {
	if w, ok := c.bySize[size]; ok {
		return w
	}

	w := Generate(c.typ, size)
	c.bySize[size] = w

	return w
}

// Len reports how many distinct sizes are cached.
func (c *Cache) Len() int {
	return len(c.bySize)
}

func evalWindow(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	default:
		return 1
	}
}
