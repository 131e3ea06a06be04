package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaussianScoreAtCenter(t *testing.T) {
	assert.Equal(t, 100.0, GaussianScore(1700.0, 1700.0, 700.0))
	assert.Equal(t, 100.0, GaussianScore(-0.5, -0.5, 0.8))
}

func TestGaussianScoreSymmetry(t *testing.T) {
	left := GaussianScore(1200.0, 1700.0, 700.0)
	right := GaussianScore(2200.0, 1700.0, 700.0)
	assert.InDelta(t, left, right, 1e-9)
	assert.Less(t, left, 100.0)
	assert.Greater(t, left, 0.0)
}

func TestGaussianScoreOneSigma(t *testing.T) {
	// One sigma away: 100 * exp(-0.5)
	got := GaussianScore(2400.0, 1700.0, 700.0)
	assert.InDelta(t, 100.0*math.Exp(-0.5), got, 1e-9)
}

func TestGaussianScoreCoercesBadSigma(t *testing.T) {
	// Non-positive sigma falls back to 1.
	assert.InDelta(t, 100.0*math.Exp(-0.5), GaussianScore(1.0, 0.0, 0.0), 1e-9)
	assert.InDelta(t, 100.0*math.Exp(-0.5), GaussianScore(1.0, 0.0, -3.0), 1e-9)
}

func TestLinearScore(t *testing.T) {
	assert.Equal(t, 100.0, LinearScore(10.0, 10.0, 5.0))
	assert.InDelta(t, 50.0, LinearScore(12.5, 10.0, 5.0), 1e-9)
	assert.Equal(t, 0.0, LinearScore(15.0, 10.0, 5.0))
	assert.Equal(t, 0.0, LinearScore(100.0, 10.0, 5.0)) // clamped, never negative
	assert.Equal(t, 0.0, LinearScore(10.0, 10.0, 0.0))  // degenerate tolerance
}

func TestGaussianScoreOptPropagatesNil(t *testing.T) {
	assert.Nil(t, gaussianScoreOpt(nil, 100.0, 10.0))
	got := gaussianScoreOpt(ptr(100.0), 100.0, 10.0)
	assert.NotNil(t, got)
	assert.Equal(t, 100.0, *got)
}

func TestArgmaxLabelOrderAndTies(t *testing.T) {
	labels := []string{"s", "ss", "h"}

	best, bestScore, second := argmaxLabel(labels, map[string]float64{"s": 10, "ss": 80, "h": 40})
	assert.Equal(t, "ss", best)
	assert.Equal(t, 80.0, bestScore)
	assert.Equal(t, 40.0, second)

	// Ties resolve to the earlier label.
	best, _, _ = argmaxLabel(labels, map[string]float64{"s": 50, "ss": 50, "h": 50})
	assert.Equal(t, "s", best)

	// Missing labels count as zero.
	best, bestScore, second = argmaxLabel(labels, map[string]float64{"h": 5})
	assert.Equal(t, "h", best)
	assert.Equal(t, 5.0, bestScore)
	assert.Equal(t, 0.0, second)
}

func TestF0CalibrationZScore(t *testing.T) {
	calib := &F0Calibration{MeanHz: 200.0, SDHz: 20.0}

	z := calib.ZScore(ptr(220.0))
	assert.NotNil(t, z)
	assert.InDelta(t, 1.0, *z, 1e-9)

	assert.Nil(t, calib.ZScore(nil))

	var missing *F0Calibration
	assert.Nil(t, missing.ZScore(ptr(220.0)))

	degenerate := &F0Calibration{MeanHz: 200.0, SDHz: 0.0}
	assert.Nil(t, degenerate.ZScore(ptr(220.0)))
}

func TestTooQuiet(t *testing.T) {
	assert.True(t, tooQuiet(silence(0.5), testSampleRate))
	assert.True(t, tooQuiet(silence(0.01), testSampleRate))
	assert.False(t, tooQuiet(sine(200.0, 0.5, 0.5), testSampleRate))
}
