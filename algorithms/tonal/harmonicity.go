package tonal

import (
	"math"
)

// HNRFromStrength converts a normalized autocorrelation peak into a
// harmonics-to-noise ratio in dB: HNR = 10*log10(r / (1 - r)). The input
// is clamped to (0, 1) so the result stays finite.
//
// References:
//   - Boersma, P. (1993). "Accurate short-term analysis of the fundamental
//     frequency and the harmonics-to-noise ratio of a sampled sound"
func HNRFromStrength(r float64) float64 {
	if r < 1e-6 {
		r = 1e-6
	}
	if r > 1.0-1e-6 {
		r = 1.0 - 1e-6
	}
	return 10.0 * math.Log10(r/(1.0-r))
}

// Harmonicity computes a framewise HNR contour from a pitch track's
// autocorrelation strengths.
type Harmonicity struct {
	tracker *PitchTracker
}

// NewHarmonicity creates a harmonicity analyzer with default pitch
// tracking parameters.
func NewHarmonicity(sampleRate int) *Harmonicity {
	return &Harmonicity{tracker: NewPitchTracker(sampleRate)}
}

// Compute returns per-frame HNR values in dB, aligned with the frames of
// the default pitch track.
func (h *Harmonicity) Compute(signal []float64) []float64 {
	track := h.tracker.Track(signal)
	hnr := make([]float64, len(track.Frames))
	for i, f := range track.Frames {
		hnr[i] = HNRFromStrength(f.Strength)
	}
	return hnr
}
