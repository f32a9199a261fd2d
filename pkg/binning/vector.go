// Package binning maps raw numeric features onto score grids: monotonic bin
// edges, log-rule score matrices and the normalised FICO targets that metric
// scores are snapped onto.
//
// Every value in this package is immutable once built. Constructors copy
// their input and accessors hand out copies, so a Vector or Matrix can be
// shared by concurrent scoring requests without locking.
package binning

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrOutOfRange   = errors.New("bin index out of range")
	ErrNotMonotonic = errors.New("edges are not monotonic")
	ErrEmpty        = errors.New("empty vector")
)

// Vector is an immutable ordered sequence of floats.
type Vector struct {
	values []float64
}

func NewVector(values ...float64) Vector {
	v := make([]float64, len(values))
	copy(v, values)
	return Vector{values: v}
}

func (v Vector) Len() int {
	return len(v.values)
}

// At returns the i-th element.
func (v Vector) At(i int) (float64, error) {
	if i < 0 || i >= len(v.values) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, i, len(v.values))
	}
	return v.values[i], nil
}

// Values returns a copy of the underlying elements.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

func (v Vector) Scale(k float64) Vector {
	out := make([]float64, len(v.values))
	floats.ScaleTo(out, k, v.values)
	return Vector{values: out}
}

// Shift adds k to every element.
func (v Vector) Shift(k float64) Vector {
	out := v.Values()
	floats.AddConst(k, out)
	return Vector{values: out}
}

// Round rounds every element half-to-even at the given number of decimals.
func (v Vector) Round(decimals int) Vector {
	out := make([]float64, len(v.values))
	for i, x := range v.values {
		out[i] = Round(x, decimals)
	}
	return Vector{values: out}
}

func (v Vector) Reverse() Vector {
	out := v.Values()
	floats.Reverse(out)
	return Vector{values: out}
}

// Drop removes head elements from the front and tail elements from the back.
func (v Vector) Drop(head, tail int) Vector {
	if head+tail >= len(v.values) {
		return Vector{}
	}
	return NewVector(v.values[head : len(v.values)-tail]...)
}

// Ascending reports whether the edges are non-decreasing.
func (v Vector) Ascending() bool {
	for i := 1; i < len(v.values); i++ {
		if v.values[i] < v.values[i-1] {
			return false
		}
	}
	return true
}

// Descending reports whether the edges are non-increasing.
func (v Vector) Descending() bool {
	for i := 1; i < len(v.values); i++ {
		if v.values[i] > v.values[i-1] {
			return false
		}
	}
	return true
}

// Monotonic returns ErrNotMonotonic unless the vector can be used as bin edges.
func (v Vector) Monotonic() error {
	if len(v.values) == 0 {
		return ErrEmpty
	}
	if !v.Ascending() && !v.Descending() {
		return fmt.Errorf("%w: %v", ErrNotMonotonic, v.values)
	}
	return nil
}

// Digitize returns the index of the bin x falls into, in [0, Len()].
//
// For ascending edges with rightInclusive set, the result is the index of
// the smallest edge >= x, so a value equal to an edge lands in that edge's
// bin. Without rightInclusive it is the index of the smallest edge > x.
// Descending edges mirror both rules.
func (v Vector) Digitize(x float64, rightInclusive bool) int {
	if len(v.values) == 0 {
		return 0
	}

	idx := 0
	if v.Ascending() {
		for _, e := range v.values {
			if e < x || (!rightInclusive && e == x) {
				idx++
			}
		}
		return idx
	}

	for _, e := range v.values {
		if e > x || (rightInclusive && e == x) {
			idx++
		}
	}
	return idx
}

// Round rounds x half-to-even at the given number of decimals.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*p) / p
}
