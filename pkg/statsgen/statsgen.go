// Package statsgen generates sampled probability density curves used to
// summarize measured size populations and to preview hypothetical ones.
//
// Every generator is a pure function of its arguments.
package statsgen

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInvalidSize      = errors.New("sample count must be positive")
	ErrInvalidParameter = errors.New("invalid distribution parameter")
	ErrNegativeDensity  = errors.New("negative density")
)

// DensityError reports a sample whose density is negative or NaN, which
// means the distribution parameters are outside their domain.
type DensityError struct {
	Index   int
	X       float64
	Density float64
}

func (e *DensityError) Error() string {
	return fmt.Sprintf("density %g at x=%g (sample %d)", e.Density, e.X, e.Index)
}

func (e *DensityError) Unwrap() error { return ErrNegativeDensity }

// Curve is a sampled density: Y[i] is the probability mass of the bin
// centred on X[i].
type Curve struct {
	X []float64 `yaml:"x"`
	Y []float64 `yaml:"y"`
}

func newCurve(size int) Curve {
	return Curve{X: make([]float64, size), Y: make([]float64, size)}
}

// Len returns the number of samples.
func (c Curve) Len() int { return len(c.X) }

// Sum returns the total mass of the curve.
func (c Curve) Sum() float64 { return floats.Sum(c.Y) }

func checkDensity(i int, x, density float64) error {
	if density < 0 || math.IsNaN(density) {
		return &DensityError{Index: i, X: x, Density: density}
	}
	return nil
}

// GenBeta samples the Beta(alpha, beta) density at the centres of size equal
// bins over [0, 1]. Each y is the density times the bin width.
func GenBeta(alpha, beta float64, size int) (Curve, error) {
	if size <= 0 {
		return Curve{}, ErrInvalidSize
	}

	// Γ(α+β)/(Γ(α)Γ(β)) in log space; Γ alone overflows once α+β passes ~171
	lgP, signP := math.Lgamma(alpha)
	lgQ, signQ := math.Lgamma(beta)
	lgPQ, signPQ := math.Lgamma(alpha + beta)
	logNorm := lgPQ - lgP - lgQ
	sign := float64(signPQ * signP * signQ)
	width := 1.0 / float64(size)

	c := newCurve(size)
	for i := 0; i < size; i++ {
		x := float64(i)*width + width/2
		pdf := sign * math.Exp(logNorm+(alpha-1)*math.Log(x)+(beta-1)*math.Log1p(-x))
		if err := checkDensity(i, x, pdf); err != nil {
			return Curve{}, err
		}
		c.X[i] = x
		c.Y[i] = pdf * width
	}
	return c, nil
}

// GenLogNormal samples the log-normal density with log-mean mean and
// log-standard-deviation stdDev over [exp(mean-5σ), exp(mean+5σ)], split
// into size equal bins. Each y is the density at the bin centre times the
// bin width.
func GenLogNormal(mean, stdDev float64, size int) (Curve, error) {
	if size <= 0 {
		return Curve{}, ErrInvalidSize
	}
	if !(stdDev > 0) || math.IsInf(stdDev, 0) || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return Curve{}, fmt.Errorf("%w: log-normal mean %g, std dev %g", ErrInvalidParameter, mean, stdDev)
	}

	lower := math.Exp(mean - 5*stdDev)
	upper := math.Exp(mean + 5*stdDev)
	width := (upper - lower) / float64(size)
	dist := distuv.LogNormal{Mu: mean, Sigma: stdDev}

	c := newCurve(size)
	for i := 0; i < size; i++ {
		x := float64(i)*width + width/2 + lower
		pdf := dist.Prob(x)
		if err := checkDensity(i, x, pdf); err != nil {
			return Curve{}, err
		}
		c.X[i] = x
		c.Y[i] = pdf * width
	}
	return c, nil
}

// GenPowerLaw evaluates alpha*x^k + beta at the centres of size equal bins
// over [0, 5].
func GenPowerLaw(alpha, k, beta float64, size int) (Curve, error) {
	if size <= 0 {
		return Curve{}, ErrInvalidSize
	}

	const lower, upper = 0.0, 5.0
	width := (upper - lower) / float64(size)

	c := newCurve(size)
	for i := 0; i < size; i++ {
		x := float64(i)*width + width/2 + lower
		y := alpha*math.Pow(x, k) + beta
		if err := checkDensity(i, x, y); err != nil {
			return Curve{}, err
		}
		c.X[i] = x
		c.Y[i] = y
	}
	return c, nil
}
