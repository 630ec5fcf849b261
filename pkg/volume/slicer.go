// Package volume extracts planes from a label volume stored as a flat
// row-major array.
package volume

import (
	"fmt"

	"grainstats/internal/models"
)

// Slicer extracts axis-aligned planes from a label volume.
type Slicer struct {
	// labels holds one label per voxel, x fastest
	labels []int32

	// dimensions of the volume
	width  int
	height int
	depth  int
}

// NewSlicer creates a slicer over the labels of field. The labels are not
// copied.
func NewSlicer(field models.VoxelField) *Slicer {
	return &Slicer{
		labels: field.Labels,
		width:  field.XPoints,
		height: field.YPoints,
		depth:  field.ZPoints,
	}
}

// PlaneCount returns how many planes exist along axis.
func (s *Slicer) PlaneCount(axis string) (int, error) {
	switch axis {
	case "x", "X":
		return s.width, nil
	case "y", "Y":
		return s.height, nil
	case "z", "Z":
		return s.depth, nil
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}
}

// ExtractSlice copies the plane at position along axis.
//
// An x plane is laid out depth-major (z rows of height labels), a y plane
// z rows of width labels and a z plane y rows of width labels.
func (s *Slicer) ExtractSlice(axis string, position int) ([]int32, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var plane []int32

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= s.width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, s.width)
		}
		plane = make([]int32, 0, s.height*s.depth)
		for z := 0; z < s.depth; z++ {
			for y := 0; y < s.height; y++ {
				plane = append(plane, s.labels[z*s.width*s.height+y*s.width+position])
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= s.height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, s.height)
		}
		plane = make([]int32, 0, s.width*s.depth)
		for z := 0; z < s.depth; z++ {
			row := z*s.width*s.height + position*s.width
			plane = append(plane, s.labels[row:row+s.width]...)
		}

	case "z", "Z":
		// XY plane
		if position >= s.depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, s.depth)
		}
		start := position * s.width * s.height
		plane = append([]int32(nil), s.labels[start:start+s.width*s.height]...)

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return plane, nil
}

// Faces returns the outer planes of the volume: both x and both y faces, and
// both z faces when includeZ is set. A dimension of extent 1 yields a single
// face.
func (s *Slicer) Faces(includeZ bool) ([][]int32, error) {
	axes := []string{"x", "y"}
	if includeZ {
		axes = append(axes, "z")
	}

	var faces [][]int32
	for _, axis := range axes {
		n, err := s.PlaneCount(axis)
		if err != nil {
			return nil, err
		}
		positions := []int{0}
		if n > 1 {
			positions = append(positions, n-1)
		}
		for _, pos := range positions {
			plane, err := s.ExtractSlice(axis, pos)
			if err != nil {
				return nil, err
			}
			faces = append(faces, plane)
		}
	}
	return faces, nil
}
