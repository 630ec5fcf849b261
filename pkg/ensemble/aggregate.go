// Package ensemble aggregates per-object equivalent diameters into per-phase
// size statistics.
//
// Statistics are taken over ln(diameter), since equivalent diameters of a
// segmented population are close to log-normally distributed. The mean is
// computed in a first pass and the variance in a second, so no streaming
// variance update is needed.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"math"

	"grainstats/internal/models"
)

// ErrPhaseOutOfRange is returned for an object whose phase id is not a valid
// ensemble index.
var ErrPhaseOutOfRange = errors.New("phase out of range")

// DefaultCheckInterval is how many objects are processed between
// cancellation checks when Input.CheckInterval is unset.
const DefaultCheckInterval = 4096

// Input is the per-object data to aggregate. Index 0 of every slice is the
// background object and is ignored.
type Input struct {
	Diameters []float32
	Phases    []int32
	Biased    []bool

	// NumEnsembles is the number of phases including the undefined phase 0
	NumEnsembles int

	CheckInterval int
}

// Result holds statistics for every ensemble. Stats[0] is always zero.
type Result struct {
	Stats []models.EnsembleStats

	// Degenerate lists the phases, from 1 up, with no unbiased object
	Degenerate []int
}

type accumulator struct {
	count   []int
	sumLog  []float64
	sumSq   []float64
	minDiam []float32
	maxDiam []float32
}

func newAccumulator(n int) *accumulator {
	a := &accumulator{
		count:   make([]int, n),
		sumLog:  make([]float64, n),
		sumSq:   make([]float64, n),
		minDiam: make([]float32, n),
		maxDiam: make([]float32, n),
	}
	for i := range a.minDiam {
		a.minDiam[i] = float32(math.Inf(1))
	}
	return a
}

func (in Input) validate() error {
	if in.NumEnsembles < 1 {
		return fmt.Errorf("ensemble count must be at least 1, got %d", in.NumEnsembles)
	}
	n := len(in.Diameters)
	if len(in.Phases) != n || len(in.Biased) != n {
		return fmt.Errorf("per-object arrays differ in length: %d diameters, %d phases, %d biased flags",
			n, len(in.Phases), len(in.Biased))
	}
	for i := 1; i < n; i++ {
		if p := in.Phases[i]; p < 0 || int(p) >= in.NumEnsembles {
			return fmt.Errorf("%w: object %d has phase %d, ensembles 0..%d", ErrPhaseOutOfRange, i, p, in.NumEnsembles-1)
		}
	}
	return nil
}

// included reports whether object i contributes to its phase. Objects that
// never occurred have diameter zero and are left out so ln(0) never enters
// a sum.
func (in Input) included(i int) bool {
	return !in.Biased[i] && in.Diameters[i] > 0
}

// Aggregate computes the log-space mean and standard deviation, the diameter
// range and 10 uniform bin edges of every phase. Biased objects are skipped.
// A phase without any contributing object is marked Degenerate instead of
// receiving a mean computed from zero samples.
func Aggregate(ctx context.Context, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	interval := in.CheckInterval
	if interval < 1 {
		interval = DefaultCheckInterval
	}

	acc := newAccumulator(in.NumEnsembles)
	n := len(in.Diameters)

	// pass 1: counts, log sums and range
	for i := 1; i < n; i++ {
		if i%interval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !in.included(i) {
			continue
		}
		p := in.Phases[i]
		d := in.Diameters[i]
		acc.count[p]++
		acc.sumLog[p] += math.Log(float64(d))
		if d > acc.maxDiam[p] {
			acc.maxDiam[p] = d
		}
		if d < acc.minDiam[p] {
			acc.minDiam[p] = d
		}
	}

	mean := make([]float64, in.NumEnsembles)
	for p := 1; p < in.NumEnsembles; p++ {
		if acc.count[p] > 0 {
			mean[p] = acc.sumLog[p] / float64(acc.count[p])
		}
	}

	// pass 2: squared deviations from the log mean
	for i := 1; i < n; i++ {
		if i%interval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !in.included(i) {
			continue
		}
		p := in.Phases[i]
		dev := math.Log(float64(in.Diameters[i])) - mean[p]
		acc.sumSq[p] += dev * dev
	}

	// pass 3: bins
	res := &Result{Stats: make([]models.EnsembleStats, in.NumEnsembles)}
	for p := 1; p < in.NumEnsembles; p++ {
		if acc.count[p] == 0 {
			res.Stats[p] = models.EnsembleStats{Degenerate: true}
			res.Degenerate = append(res.Degenerate, p)
			continue
		}

		step := (acc.maxDiam[p] - acc.minDiam[p]) / models.NumSizeBins
		bins := make([]float32, models.NumSizeBins)
		for j := range bins {
			bins[j] = acc.minDiam[p] + float32(j)*step
		}

		res.Stats[p] = models.EnsembleStats{
			GrainSizeAverage: float32(mean[p]),
			GrainSizeStdDev:  float32(math.Sqrt(acc.sumSq[p] / float64(acc.count[p]))),
			MinGrainDiameter: acc.minDiam[p],
			MaxGrainDiameter: acc.maxDiam[p],
			BinStepSize:      step,
			BinNumbers:       bins,
			UnbiasedCount:    acc.count[p],
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
