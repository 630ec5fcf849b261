package statsgen

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestGenBetaIntegratesToOne samples Beta(2,2) and checks total mass
func TestGenBetaIntegratesToOne(t *testing.T) {
	c, err := GenBeta(2, 2, 100)
	require.NoError(t, err)
	require.Equal(t, 100, c.Len())

	assert.InDelta(t, 1.0, c.Sum(), 0.01)
	for i, y := range c.Y {
		assert.GreaterOrEqual(t, y, 0.0, "sample %d", i)
	}
	assert.InDelta(t, 0.005, c.X[0], 1e-15)
	assert.InDelta(t, 0.995, c.X[99], 1e-15)
}

// TestGenBetaMatchesReference compares against gonum's Beta density
func TestGenBetaMatchesReference(t *testing.T) {
	for _, p := range []struct{ a, b float64 }{{2, 2}, {0.5, 0.5}, {2, 5}, {7.5, 1.2}} {
		c, err := GenBeta(p.a, p.b, 40)
		require.NoError(t, err)

		ref := distuv.Beta{Alpha: p.a, Beta: p.b}
		for i, x := range c.X {
			assert.InEpsilon(t, ref.Prob(x)/40, c.Y[i], 1e-9, "alpha=%v beta=%v x=%v", p.a, p.b, x)
		}
	}
}

// TestGenBetaLargeShapes stays finite where Γ(α+β) alone overflows
func TestGenBetaLargeShapes(t *testing.T) {
	c, err := GenBeta(200, 200, 100)
	require.NoError(t, err)
	require.Equal(t, 100, c.Len())

	ref := distuv.Beta{Alpha: 200, Beta: 200}
	for i, y := range c.Y {
		assert.False(t, math.IsNaN(y), "sample %d", i)
		assert.InDelta(t, ref.Prob(c.X[i])/100, y, 1e-9, "x=%v", c.X[i])
	}
	assert.InDelta(t, 1.0, c.Sum(), 1e-3)
}

// TestGenBetaNegativeDensity surfaces an invalid parameter instead of clamping
func TestGenBetaNegativeDensity(t *testing.T) {
	_, err := GenBeta(-0.5, 2, 10)
	require.ErrorIs(t, err, ErrNegativeDensity)

	var derr *DensityError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 0, derr.Index)
	assert.Less(t, derr.Density, 0.0)
}

// TestGenLogNormalShape checks ordering, positivity and the mode position
func TestGenLogNormalShape(t *testing.T) {
	const mean, stdDev = 0.0, 1.0
	c, err := GenLogNormal(mean, stdDev, 50)
	require.NoError(t, err)
	require.Equal(t, 50, c.Len())

	for i := range c.X {
		assert.Greater(t, c.X[i], 0.0)
		assert.GreaterOrEqual(t, c.Y[i], 0.0)
		if i > 0 {
			assert.Greater(t, c.X[i], c.X[i-1])
		}
	}

	width := (math.Exp(mean+5*stdDev) - math.Exp(mean-5*stdDev)) / 50
	mode := math.Exp(mean - stdDev*stdDev)
	peak := c.X[floats.MaxIdx(c.Y)]
	assert.LessOrEqual(t, math.Abs(peak-mode), width, "peak at %v, mode %v", peak, mode)
}

// TestGenLogNormalNarrowMode uses a fine grid so the peak lands on the mode
func TestGenLogNormalNarrowMode(t *testing.T) {
	const mean, stdDev = 2.0, 0.1
	c, err := GenLogNormal(mean, stdDev, 2000)
	require.NoError(t, err)

	width := c.X[1] - c.X[0]
	mode := math.Exp(mean - stdDev*stdDev)
	assert.InDelta(t, mode, c.X[floats.MaxIdx(c.Y)], width)
	assert.InDelta(t, 1.0, c.Sum(), 1e-3)
}

func TestGenLogNormalInvalid(t *testing.T) {
	_, err := GenLogNormal(0, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = GenLogNormal(0, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = GenLogNormal(math.NaN(), 1, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = GenLogNormal(0, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

// TestGenPowerLawSquare evaluates y = x^2
func TestGenPowerLawSquare(t *testing.T) {
	c, err := GenPowerLaw(1, 2, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 10, c.Len())

	for i, x := range c.X {
		assert.InDelta(t, x*x, c.Y[i], 1e-12)
		assert.True(t, x > 0 && x < 5)
	}
	assert.InDelta(t, 0.25, c.X[0], 1e-15)
	assert.InDelta(t, 4.75, c.X[9], 1e-15)
}

func TestGenPowerLawNegative(t *testing.T) {
	_, err := GenPowerLaw(1, 1, -1, 10)
	var derr *DensityError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 0, derr.Index)
}

func TestInvalidSize(t *testing.T) {
	_, err := GenBeta(2, 2, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = GenPowerLaw(1, 2, 0, -3)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

// TestGeneratorsDeterministic requires identical output for identical input
func TestGeneratorsDeterministic(t *testing.T) {
	a, err := GenLogNormal(1.3, 0.4, 64)
	require.NoError(t, err)
	b, err := GenLogNormal(1.3, 0.4, 64)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("GenLogNormal not reproducible (-first +second):\n%s", diff)
	}

	c, _ := GenBeta(3, 4, 33)
	d, _ := GenBeta(3, 4, 33)
	assert.Equal(t, c, d)
}

func TestComputeNumberOfBins(t *testing.T) {
	n, lower, upper, err := ComputeNumberOfBins(0, 1, 1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.InDelta(t, math.Exp(-1), lower, 1e-15)
	assert.InDelta(t, math.E, upper, 1e-15)

	n32, lower32, upper32, err := ComputeNumberOfBins32(0, 1, 1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, n, n32)
	assert.InDelta(t, lower, float64(lower32), 1e-6)
	assert.InDelta(t, upper, float64(upper32), 1e-6)

	_, _, _, err = ComputeNumberOfBins(0, 1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, _, _, err = ComputeNumberOfBins32(0, 1, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, _, _, err = ComputeNumberOfBins(0, 100, 5, 1e-9)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

// TestGenCutOff checks bounds and bin edges in both precisions
func TestGenCutOff(t *testing.T) {
	c, err := GenCutOff(0.0, 1.0, 1.0, 0.5, 2.0)
	require.NoError(t, err)

	assert.Equal(t, 5, c.NumBins)
	assert.Len(t, c.BinSizes, 5)
	assert.Equal(t, []float64{0, 2}, c.Y)
	assert.InDelta(t, math.Exp(-1), c.X[0], 1e-15)
	assert.InDelta(t, math.E, c.X[1], 1e-15)
	for i, edge := range c.BinSizes {
		assert.InDelta(t, c.X[0]+float64(i)*0.5, edge, 1e-15)
	}

	c32, err := GenCutOff[float32](0, 1, 1, 0.5, 2)
	require.NoError(t, err)
	assert.Equal(t, c.NumBins, c32.NumBins)
	assert.Equal(t, float32(2), c32.Y[1])

	_, err = GenCutOff(0.0, 1.0, 1.0, 0.0, 1.0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
