package statsgen

import (
	"fmt"
	"math"
)

// MaxBins bounds the bin count a cutoff may produce.
const MaxBins = 1 << 20

// Float is the element type of cutoff computations.
type Float interface {
	~float32 | ~float64
}

// CutOff is a distribution clipped at a number of standard deviations,
// represented by its bounds rather than a sampled density.
type CutOff[T Float] struct {
	// X holds {min, max} and Y holds {0, yMax}
	X []T `yaml:"x"`
	Y []T `yaml:"y"`

	// NumBins is the number of bins of width binStep between min and max
	NumBins int `yaml:"numBins"`

	// BinSizes holds the lower edge of each bin
	BinSizes []T `yaml:"binSizes"`
}

func computeNumberOfBins[T Float](mu, sigma, cutoff, binStep T) (int, T, T, error) {
	if !(binStep > 0) {
		return 0, 0, 0, fmt.Errorf("%w: bin step %v", ErrInvalidParameter, binStep)
	}
	upper := T(math.Exp(float64(mu + cutoff*sigma)))
	lower := T(math.Exp(float64(mu - cutoff*sigma)))

	n := float64((upper - lower) / binStep)
	if math.IsNaN(n) || n < 0 || n >= MaxBins {
		return 0, 0, 0, fmt.Errorf("%w: mu %v, sigma %v, cutoff %v, bin step %v give %g bins",
			ErrInvalidParameter, mu, sigma, cutoff, binStep, n)
	}
	return int(n) + 1, lower, upper, nil
}

// ComputeNumberOfBins returns the number of bins of width binStep covering
// [exp(mu - cutoff*sigma), exp(mu + cutoff*sigma)], together with those
// bounds.
func ComputeNumberOfBins(mu, sigma, cutoff, binStep float64) (numBins int, lower, upper float64, err error) {
	return computeNumberOfBins(mu, sigma, cutoff, binStep)
}

// ComputeNumberOfBins32 is ComputeNumberOfBins in single precision.
func ComputeNumberOfBins32(mu, sigma, cutoff, binStep float32) (numBins int, lower, upper float32, err error) {
	return computeNumberOfBins(mu, sigma, cutoff, binStep)
}

// GenCutOff builds the bounding curve {(min, 0), (max, yMax)} of a
// distribution clipped at cutoff standard deviations, plus the lower edges
// of its bins, stepped by binStep from min.
func GenCutOff[T Float](mu, sigma, cutoff, binStep, yMax T) (CutOff[T], error) {
	numBins, lower, upper, err := computeNumberOfBins(mu, sigma, cutoff, binStep)
	if err != nil {
		return CutOff[T]{}, err
	}

	c := CutOff[T]{
		X:        []T{lower, upper},
		Y:        []T{0, yMax},
		NumBins:  numBins,
		BinSizes: make([]T, numBins),
	}
	for i := range c.BinSizes {
		c.BinSizes[i] = lower + T(i)*binStep
	}
	return c, nil
}
