package models

import "errors"

// NumSizeBins is the number of histogram bins built per ensemble.
const NumSizeBins = 10

// ErrDegenerateStatistics marks an ensemble with no unbiased objects, for
// which the size mean and standard deviation are undefined.
var ErrDegenerateStatistics = errors.New("degenerate statistics: no unbiased objects in ensemble")

// ObjectMeasurements holds per-object geometry, indexed by object label.
// Index 0 is background and left zero.
type ObjectMeasurements struct {
	// NumCells is the voxel count of each object
	NumCells []int32

	// Volumes holds the volume (3D) or area (2D) of each object
	Volumes []float32

	// EquivalentDiameters holds the diameter of the sphere (3D) or circle (2D)
	// with the same volume or area
	EquivalentDiameters []float32
}

// NewObjectMeasurements allocates measurements for numFields objects,
// including the background entry at index 0.
func NewObjectMeasurements(numFields int) *ObjectMeasurements {
	return &ObjectMeasurements{
		NumCells:            make([]int32, numFields),
		Volumes:             make([]float32, numFields),
		EquivalentDiameters: make([]float32, numFields),
	}
}

// Len returns the number of entries, background included.
func (m *ObjectMeasurements) Len() int {
	return len(m.NumCells)
}

// EnsembleStats is the size statistics of one ensemble (phase).
// Averages are taken over the natural log of the equivalent diameter.
type EnsembleStats struct {
	GrainSizeAverage float32 `yaml:"grainSizeAverage"`
	GrainSizeStdDev  float32 `yaml:"grainSizeStdDev"`
	MinGrainDiameter float32 `yaml:"minGrainDiameter"`
	MaxGrainDiameter float32 `yaml:"maxGrainDiameter"`
	BinStepSize      float32 `yaml:"binStepSize"`

	// BinNumbers holds the NumSizeBins lower bin edges
	BinNumbers []float32 `yaml:"binNumbers"`

	// UnbiasedCount is the number of objects that contributed
	UnbiasedCount int `yaml:"unbiasedCount"`

	// Degenerate is set when UnbiasedCount is zero. The numeric fields are
	// then zero and carry no meaning.
	Degenerate bool `yaml:"degenerate"`
}

// Err returns ErrDegenerateStatistics for a degenerate ensemble.
func (s EnsembleStats) Err() error {
	if s.Degenerate {
		return ErrDegenerateStatistics
	}
	return nil
}

// Clone returns a deep copy.
func (s EnsembleStats) Clone() EnsembleStats {
	c := s
	if s.BinNumbers != nil {
		c.BinNumbers = append([]float32(nil), s.BinNumbers...)
	}
	return c
}
