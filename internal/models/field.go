package models

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned when a field has a non-positive extent
// along any axis.
var ErrInvalidGeometry = errors.New("invalid field geometry")

// Resolution is the physical spacing between voxel centres along each axis.
type Resolution struct {
	X, Y, Z float64
}

// Geometry describes the extent of a voxel field.
type Geometry struct {
	// XPoints, YPoints, ZPoints are the number of voxels along each axis.
	// A field with ZPoints == 1 is a single 2D slice.
	XPoints, YPoints, ZPoints int

	// Resolution is the voxel spacing
	Resolution Resolution
}

// TotalPoints returns the number of voxels in the field.
func (g Geometry) TotalPoints() int {
	return g.XPoints * g.YPoints * g.ZPoints
}

// SlicePoints returns the number of voxels in one XY slice.
func (g Geometry) SlicePoints() int {
	return g.XPoints * g.YPoints
}

// Is2D reports whether the field is a single slice in z.
func (g Geometry) Is2D() bool {
	return g.ZPoints == 1
}

// Validate checks that every extent is positive.
func (g Geometry) Validate() error {
	if g.XPoints <= 0 || g.YPoints <= 0 || g.ZPoints <= 0 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidGeometry, g.XPoints, g.YPoints, g.ZPoints)
	}
	return nil
}

// VoxelField is a segmented microstructure: one object label per voxel.
// Label 0 is background. Labels are stored row-major with x varying fastest,
// then y, then z.
type VoxelField struct {
	// Labels holds one label per voxel
	Labels []int32

	Geometry
}

// Slice returns the labels of the XY slice at depth z without copying.
func (f VoxelField) Slice(z int) []int32 {
	n := f.SlicePoints()
	return f.Labels[z*n : (z+1)*n]
}

// Index returns the flat offset of voxel (x, y, z).
func (f VoxelField) Index(x, y, z int) int {
	return z*f.XPoints*f.YPoints + y*f.XPoints + x
}

// Validate checks the geometry and that the label count matches it.
func (f VoxelField) Validate() error {
	if err := f.Geometry.Validate(); err != nil {
		return err
	}
	if len(f.Labels) != f.TotalPoints() {
		return fmt.Errorf("%w: %d labels for %d voxels", ErrInvalidGeometry, len(f.Labels), f.TotalPoints())
	}
	return nil
}

// MaxLabel returns the largest label in the field, or 0 for an empty field.
func (f VoxelField) MaxLabel() int32 {
	var m int32
	for _, l := range f.Labels {
		if l > m {
			m = l
		}
	}
	return m
}
