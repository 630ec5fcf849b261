package ensemble

import (
	"fmt"

	"grainstats/internal/models"
	"grainstats/pkg/statsgen"
)

// LogNormalCurve samples the log-normal size distribution described by s.
func LogNormalCurve(s models.EnsembleStats, samples int) (statsgen.Curve, error) {
	if err := s.Err(); err != nil {
		return statsgen.Curve{}, err
	}
	c, err := statsgen.GenLogNormal(float64(s.GrainSizeAverage), float64(s.GrainSizeStdDev), samples)
	if err != nil {
		return statsgen.Curve{}, fmt.Errorf("log-normal curve: %w", err)
	}
	return c, nil
}

// CutOffCurve clips the size distribution of s at cutoff standard deviations
// using the measured bin step.
func CutOffCurve(s models.EnsembleStats, cutoff, yMax float32) (statsgen.CutOff[float32], error) {
	if err := s.Err(); err != nil {
		return statsgen.CutOff[float32]{}, err
	}
	c, err := statsgen.GenCutOff(s.GrainSizeAverage, s.GrainSizeStdDev, cutoff, s.BinStepSize, yMax)
	if err != nil {
		return statsgen.CutOff[float32]{}, fmt.Errorf("cutoff curve: %w", err)
	}
	return c, nil
}
