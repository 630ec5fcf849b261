package datacontainer

import (
	"fmt"

	"grainstats/internal/models"
)

// Kind is the element type of an Array.
type Kind int

const (
	KindInt32 Kind = iota
	KindFloat32
	KindBool
	KindStats
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	case KindBool:
		return "bool"
	case KindStats:
		return "stats"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Array is a named, typed data array. Exactly one of the backing slices is
// in use, selected by Kind.
type Array struct {
	name  string
	kind  Kind
	i32   []int32
	f32   []float32
	b     []bool
	stats []models.EnsembleStats
}

// NewArray allocates a zeroed array of the given kind and length.
func NewArray(name string, kind Kind, length int) *Array {
	a := &Array{name: name, kind: kind}
	switch kind {
	case KindInt32:
		a.i32 = make([]int32, length)
	case KindFloat32:
		a.f32 = make([]float32, length)
	case KindBool:
		a.b = make([]bool, length)
	case KindStats:
		a.stats = make([]models.EnsembleStats, length)
	}
	return a
}

// Int32Array wraps values without copying.
func Int32Array(name string, values []int32) *Array {
	return &Array{name: name, kind: KindInt32, i32: values}
}

// Float32Array wraps values without copying.
func Float32Array(name string, values []float32) *Array {
	return &Array{name: name, kind: KindFloat32, f32: values}
}

// BoolArray wraps values without copying.
func BoolArray(name string, values []bool) *Array {
	return &Array{name: name, kind: KindBool, b: values}
}

// StatsArray wraps values without copying.
func StatsArray(name string, values []models.EnsembleStats) *Array {
	return &Array{name: name, kind: KindStats, stats: values}
}

func (a *Array) Name() string { return a.name }
func (a *Array) Kind() Kind   { return a.kind }

// Len returns the number of tuples.
func (a *Array) Len() int {
	switch a.kind {
	case KindInt32:
		return len(a.i32)
	case KindFloat32:
		return len(a.f32)
	case KindBool:
		return len(a.b)
	case KindStats:
		return len(a.stats)
	}
	return 0
}

// Int32s returns the backing slice, or nil if the array is not KindInt32.
func (a *Array) Int32s() []int32 { return a.i32 }

// Float32s returns the backing slice, or nil if the array is not KindFloat32.
func (a *Array) Float32s() []float32 { return a.f32 }

// Bools returns the backing slice, or nil if the array is not KindBool.
func (a *Array) Bools() []bool { return a.b }

// Stats returns the backing slice, or nil if the array is not KindStats.
func (a *Array) Stats() []models.EnsembleStats { return a.stats }

// placeholder returns an array of the same name and kind with length n.
func (a *Array) placeholder(n int) *Array {
	return NewArray(a.name, a.kind, n)
}
