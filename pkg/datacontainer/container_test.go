package datacontainer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grainstats/internal/models"
)

func testGeometry() models.Geometry {
	return models.Geometry{XPoints: 4, YPoints: 3, ZPoints: 2, Resolution: models.Resolution{X: 1, Y: 1, Z: 1}}
}

// TestArrayKinds checks that each constructor exposes only its own slice
func TestArrayKinds(t *testing.T) {
	i := Int32Array("a", []int32{1, 2, 3})
	assert.Equal(t, KindInt32, i.Kind())
	assert.Equal(t, 3, i.Len())
	assert.Nil(t, i.Float32s())
	assert.Nil(t, i.Bools())

	f := NewArray("f", KindFloat32, 5)
	assert.Equal(t, 5, f.Len())
	assert.Len(t, f.Float32s(), 5)
	assert.Nil(t, f.Int32s())

	b := BoolArray("b", []bool{true})
	assert.Equal(t, KindBool, b.Kind())
	assert.Equal(t, 1, b.Len())

	s := NewArray("s", KindStats, 2)
	assert.Equal(t, "stats", s.Kind().String())
	assert.Len(t, s.Stats(), 2)
}

func TestResolveInputFound(t *testing.T) {
	dc := New(testGeometry())
	dc.Add(CellData, Int32Array(GrainIds, make([]int32, 24)))

	a, err := dc.ResolveInput(CellData, GrainIds, KindInt32, 24, nil)
	require.NoError(t, err)
	assert.Equal(t, GrainIds, a.Name())

	// same name in another scope is a different array
	_, err = dc.ResolveInput(FieldData, GrainIds, KindInt32, -1, nil)
	assert.ErrorIs(t, err, ErrMissingArray)
}

func TestResolveInputMismatch(t *testing.T) {
	dc := New(testGeometry())
	dc.Add(FieldData, Int32Array(Phases, []int32{0, 1}))

	_, err := dc.ResolveInput(FieldData, Phases, KindBool, 2, nil)
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = dc.ResolveInput(FieldData, Phases, KindInt32, 3, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, FieldData, rerr.Scope)
	assert.Equal(t, Phases, rerr.Name)
}

// TestResolveInputFallback runs the provider exactly once and retries once
func TestResolveInputFallback(t *testing.T) {
	dc := New(testGeometry())
	calls := 0
	provider := func() error {
		calls++
		dc.Publish(FieldData, BoolArray(BiasedFields, make([]bool, 3)))
		return nil
	}

	a, err := dc.ResolveInput(FieldData, BiasedFields, KindBool, 3, provider)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, a.Len())

	// present now, provider not called again
	_, err = dc.ResolveInput(FieldData, BiasedFields, KindBool, 3, provider)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestResolveInputFallbackFails(t *testing.T) {
	dc := New(testGeometry())
	boom := errors.New("collaborator failed")

	_, err := dc.ResolveInput(FieldData, Phases, KindInt32, 3, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	calls := 0
	_, err = dc.ResolveInput(FieldData, Phases, KindInt32, 3, func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrMissingArray)
	assert.Equal(t, 1, calls)
}

// TestAllocateOutputIsDetached verifies outputs only appear once published
func TestAllocateOutputIsDetached(t *testing.T) {
	dc := New(testGeometry())
	out := dc.AllocateOutput(Volumes, KindFloat32, 3)
	_, ok := dc.Get(FieldData, Volumes)
	assert.False(t, ok)

	dc.Publish(FieldData, out)
	got, ok := dc.Get(FieldData, Volumes)
	require.True(t, ok)
	assert.Same(t, out, got)
	assert.Equal(t, []string{Volumes}, dc.Names(FieldData))
}

// TestPlaceholder mirrors names and kinds at one tuple each
func TestPlaceholder(t *testing.T) {
	dc := New(testGeometry())
	dc.SetNumFieldTuples(7)
	dc.Add(CellData, Int32Array(GrainIds, make([]int32, 24)))
	dc.Add(FieldData, BoolArray(BiasedFields, make([]bool, 7)))

	p := dc.Placeholder()
	assert.True(t, p.IsPlaceholder())
	assert.False(t, dc.IsPlaceholder())
	assert.Same(t, p, p.Placeholder())
	assert.Equal(t, 1, p.TotalPoints())
	assert.Equal(t, 1, p.NumFieldTuples())
	assert.Equal(t, testGeometry(), p.SourceGeometry())

	a, err := p.ResolveInput(CellData, GrainIds, KindInt32, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())

	// writing to the placeholder leaves the real container alone
	p.Publish(FieldData, NewArray(Volumes, KindFloat32, 1))
	_, ok := dc.Get(FieldData, Volumes)
	assert.False(t, ok)
	ids, _ := dc.Get(CellData, GrainIds)
	assert.Equal(t, 24, ids.Len())
}
