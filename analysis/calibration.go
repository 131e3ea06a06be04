package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// F0GenderThresholdHz is the habitual-pitch split conventionally used to
// seed per-speaker calibration when no measured statistics exist yet.
const F0GenderThresholdHz = 165.0

const (
	// minSegmentSeconds is the shortest recording worth analyzing.
	minSegmentSeconds = 0.08
	// minRMS is the level below which a recording is treated as silence.
	minRMS = 0.01
)

// F0Calibration holds a speaker's habitual pitch statistics, used to
// normalize onset F0 into a speaker-relative z-score. The statistics
// come from a separate calibration recording; without them the F0 cue
// is skipped and scoring falls back to VOT alone.
type F0Calibration struct {
	MeanHz float64 `json:"mean_hz"`
	SDHz   float64 `json:"sd_hz"`
}

// ZScore returns the speaker-normalized z-score of an onset F0, or nil
// when the measurement or the calibration is missing or degenerate.
func (c *F0Calibration) ZScore(f0Hz *float64) *float64 {
	if c == nil || f0Hz == nil {
		return nil
	}
	if c.SDHz <= 1e-6 {
		return nil
	}
	return ptr((*f0Hz - c.MeanHz) / c.SDHz)
}

// tooQuiet reports whether the recording is too short or too quiet to
// carry a consonant. Analyzers degrade gracefully on such input instead
// of scoring spectral noise floors.
func tooQuiet(samples []float64, sampleRate int) bool {
	if len(samples) < int(minSegmentSeconds*float64(sampleRate)) {
		return true
	}
	rms := math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
	return rms < minRMS
}
