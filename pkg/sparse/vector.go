// Package sparse provides a reusable sparse accumulator keyed by dense integer ids.
//
// A Vector keeps a dense value array sized to the id space plus the list of ids
// touched since the last Reset, so clearing costs O(touched) instead of O(n).
// Workers allocate one Vector each and reuse it for every node they evaluate.
package sparse

import "golang.org/x/exp/constraints"

// Number is the set of value types a Vector can accumulate.
type Number interface {
	constraints.Integer | constraints.Float
}

// Vector is a sparse id -> value accumulator. Not safe for concurrent use.
type Vector[T Number] struct {
	values  []T
	used    []bool
	indices []uint64
}

// NewVector creates a vector able to hold ids in [0, size).
func NewVector[T Number](size uint64) *Vector[T] {
	return &Vector[T]{
		values:  make([]T, size),
		used:    make([]bool, size),
		indices: make([]uint64, 0, 16),
	}
}

// Size returns the id capacity.
func (v *Vector[T]) Size() uint64 {
	return uint64(len(v.values))
}

// Add accumulates delta on id i. The first touch of i records it in insertion order.
func (v *Vector[T]) Add(i uint64, delta T) {
	if !v.used[i] {
		v.used[i] = true
		v.indices = append(v.indices, i)
	}
	v.values[i] += delta
}

// Insert marks i as present without changing its value.
func (v *Vector[T]) Insert(i uint64) {
	v.Add(i, 0)
}

// Get returns the accumulated value for i, zero if untouched.
func (v *Vector[T]) Get(i uint64) T {
	return v.values[i]
}

// Contains reports whether i was touched since the last Reset.
func (v *Vector[T]) Contains(i uint64) bool {
	return v.used[i]
}

// Len returns the number of touched ids.
func (v *Vector[T]) Len() int {
	return len(v.indices)
}

// Indices returns the touched ids in insertion order. The slice is only valid
// until the next Add or Reset.
func (v *Vector[T]) Indices() []uint64 {
	return v.indices
}

// ForEach calls fn for every touched id in insertion order.
func (v *Vector[T]) ForEach(fn func(i uint64, value T)) {
	for _, i := range v.indices {
		fn(i, v.values[i])
	}
}

// Reset clears all touched entries.
func (v *Vector[T]) Reset() {
	var zero T
	for _, i := range v.indices {
		v.values[i] = zero
		v.used[i] = false
	}
	v.indices = v.indices[:0]
}
