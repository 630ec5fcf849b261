package volume

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grainstats/internal/models"
)

// testField builds a 3x2x2 field whose label is the flat index
func testField() models.VoxelField {
	f := models.VoxelField{Geometry: models.Geometry{XPoints: 3, YPoints: 2, ZPoints: 2}}
	f.Labels = make([]int32, f.TotalPoints())
	for i := range f.Labels {
		f.Labels[i] = int32(i)
	}
	return f
}

// TestExtractSlice verifies that planes are copied along each axis
func TestExtractSlice(t *testing.T) {
	s := NewSlicer(testField())

	tests := []struct {
		axis string
		pos  int
		want []int32
	}{
		{"z", 0, []int32{0, 1, 2, 3, 4, 5}},
		{"Z", 1, []int32{6, 7, 8, 9, 10, 11}},
		{"y", 1, []int32{3, 4, 5, 9, 10, 11}},
		{"x", 2, []int32{2, 5, 8, 11}},
		{"X", 0, []int32{0, 3, 6, 9}},
	}
	for _, tc := range tests {
		got, err := s.ExtractSlice(tc.axis, tc.pos)
		require.NoError(t, err)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ExtractSlice(%s, %d) mismatch (-want +got):\n%s", tc.axis, tc.pos, diff)
		}
	}
}

// TestExtractSliceCopies makes sure callers cannot write through a plane
func TestExtractSliceCopies(t *testing.T) {
	f := testField()
	s := NewSlicer(f)
	plane, err := s.ExtractSlice("z", 0)
	require.NoError(t, err)
	plane[0] = 99
	assert.Equal(t, int32(0), f.Labels[0])
}

func TestExtractSliceErrors(t *testing.T) {
	s := NewSlicer(testField())

	_, err := s.ExtractSlice("x", -1)
	assert.Error(t, err)
	_, err = s.ExtractSlice("x", 3)
	assert.Error(t, err)
	_, err = s.ExtractSlice("y", 2)
	assert.Error(t, err)
	_, err = s.ExtractSlice("z", 2)
	assert.Error(t, err)
	_, err = s.ExtractSlice("w", 0)
	assert.Error(t, err)
	_, err = s.PlaneCount("w")
	assert.Error(t, err)
}

func TestFaces(t *testing.T) {
	s := NewSlicer(testField())

	faces, err := s.Faces(false)
	require.NoError(t, err)
	assert.Len(t, faces, 4)

	faces, err = s.Faces(true)
	require.NoError(t, err)
	assert.Len(t, faces, 6)

	// a single slice has one z face
	flat := models.VoxelField{Labels: []int32{1, 2, 3, 4}, Geometry: models.Geometry{XPoints: 2, YPoints: 2, ZPoints: 1}}
	faces, err = NewSlicer(flat).Faces(true)
	require.NoError(t, err)
	assert.Len(t, faces, 5)
}
