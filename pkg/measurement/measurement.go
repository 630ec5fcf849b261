// Package measurement computes per-object size metrics from a labeled voxel
// field: voxel count, volume (area for a single slice) and equivalent
// diameter.
package measurement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"grainstats/internal/models"
)

// ErrLabelOutOfRange is wrapped by LabelRangeError.
var ErrLabelOutOfRange = errors.New("label out of range")

// LabelRangeError reports a voxel whose label is not a valid object index.
type LabelRangeError struct {
	Index     int
	Label     int32
	NumFields int
}

func (e *LabelRangeError) Error() string {
	return fmt.Sprintf("voxel %d has label %d outside [0, %d]", e.Index, e.Label, e.NumFields-1)
}

func (e *LabelRangeError) Unwrap() error { return ErrLabelOutOfRange }

// Dimensionality selects the equivalent-diameter formula.
type Dimensionality int

const (
	Dim2D Dimensionality = iota
	Dim3D
)

func (d Dimensionality) String() string {
	if d == Dim2D {
		return "2D"
	}
	return "3D"
}

// DiameterFunc converts a volume (or area) to an equivalent diameter.
type DiameterFunc func(size float64) float64

// EquivalentDiameter3D returns the diameter of the sphere with the given volume.
func EquivalentDiameter3D(volume float64) float64 {
	radCubed := volume / ((4.0 / 3.0) * math.Pi)
	return 2 * math.Cbrt(radCubed)
}

// EquivalentDiameter2D returns the diameter of the circle with the given area.
func EquivalentDiameter2D(area float64) float64 {
	radSquared := area / math.Pi
	return 2 * math.Sqrt(radSquared)
}

// SelectDiameterFunc picks the 2D formula for a single slice and the 3D one
// otherwise. A non-positive extent is a precondition violation.
func SelectDiameterFunc(g models.Geometry) (Dimensionality, DiameterFunc, error) {
	if err := g.Validate(); err != nil {
		return 0, nil, err
	}
	if g.Is2D() {
		return Dim2D, EquivalentDiameter2D, nil
	}
	return Dim3D, EquivalentDiameter3D, nil
}

// ProgressCallback reports how many z slices have been counted.
type ProgressCallback func(completed, total int)

// Options tunes the counting pass.
type Options struct {
	// Workers is the number of goroutines sharing the z slices. Values below
	// one mean one.
	Workers int

	// Progress, if set, is called after each slice. Calls are serialized.
	Progress ProgressCallback
}

// CountVoxels returns the number of voxels carrying each label in
// [0, numFields). Slices are split across workers, each with a private
// accumulator; partials are merged in worker order. The context is checked
// once per slice. A label outside the range fails with *LabelRangeError.
func CountVoxels(ctx context.Context, field models.VoxelField, numFields int, opts Options) ([]int64, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}
	if numFields < 1 {
		return nil, fmt.Errorf("numFields must be at least 1, got %d", numFields)
	}

	depth := field.ZPoints
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > depth {
		workers = depth
	}
	slicesPerWorker := (depth + workers - 1) / workers
	slicePoints := field.SlicePoints()

	var (
		mu   sync.Mutex
		done int
	)
	partials := make([][]int64, workers)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			start := w * slicesPerWorker
			end := min(start+slicesPerWorker, depth)
			acc := make([]int64, numFields)

			for z := start; z < end; z++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i, label := range field.Slice(z) {
					if label < 0 || int(label) >= numFields {
						return &LabelRangeError{Index: z*slicePoints + i, Label: label, NumFields: numFields}
					}
					acc[label]++
				}
				if opts.Progress != nil {
					mu.Lock()
					done++
					opts.Progress(done, depth)
					mu.Unlock()
				}
			}
			partials[w] = acc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// a parent cancelled after the last slice still counts as cancelled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make([]int64, numFields)
	for _, acc := range partials {
		for i, c := range acc {
			counts[i] += c
		}
	}
	return counts, nil
}

// Measure computes NumCells, Volumes and EquivalentDiameters for objects
// 1..numFields-1. The 2D or 3D formula is chosen once from the geometry.
// Objects that never occur get zero volume and zero diameter.
func Measure(ctx context.Context, field models.VoxelField, numFields int, opts Options) (*models.ObjectMeasurements, error) {
	_, diameter, err := SelectDiameterFunc(field.Geometry)
	if err != nil {
		return nil, err
	}

	counts, err := CountVoxels(ctx, field, numFields, opts)
	if err != nil {
		return nil, err
	}

	res := field.Resolution
	scalar := res.X * res.Y
	if !field.Is2D() {
		scalar *= res.Z
	}

	m := models.NewObjectMeasurements(numFields)
	for i := 1; i < numFields; i++ {
		size := float64(counts[i]) * scalar
		m.NumCells[i] = int32(counts[i])
		m.Volumes[i] = float32(size)
		m.EquivalentDiameters[i] = float32(diameter(size))
	}
	return m, nil
}
