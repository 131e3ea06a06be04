package filters

import (
	"math"
)

// Biquad implements a single second-order IIR section using the cookbook
// formulas from Robert Bristow-Johnson's "Cookbook formulae for audio EQ
// biquad filter coefficients".
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
//
// Direct Form II:
// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
type Biquad struct {
	b0, b1, b2 float64 // Numerator coefficients (normalized by a0)
	a1, a2     float64 // Denominator coefficients (normalized by a0)

	// State variables for direct form II implementation
	w1, w2 float64
}

// NewLowPassBiquad creates a second-order low-pass section.
//
// Parameters:
//   - sampleRate: Sample rate in Hz
//   - cutoff: Cutoff frequency in Hz
//   - q: Quality factor of the section
func NewLowPassBiquad(sampleRate int, cutoff, q float64) *Biquad {
	w0 := clampOmega(2.0 * math.Pi * cutoff / float64(sampleRate))
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * q)

	bq := &Biquad{}
	a0 := 1.0 + alpha
	bq.b0 = (1.0 - cosW0) / 2.0 / a0
	bq.b1 = (1.0 - cosW0) / a0
	bq.b2 = (1.0 - cosW0) / 2.0 / a0
	bq.a1 = -2.0 * cosW0 / a0
	bq.a2 = (1.0 - alpha) / a0
	return bq
}

// NewHighPassBiquad creates a second-order high-pass section.
func NewHighPassBiquad(sampleRate int, cutoff, q float64) *Biquad {
	w0 := clampOmega(2.0 * math.Pi * cutoff / float64(sampleRate))
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * q)

	bq := &Biquad{}
	a0 := 1.0 + alpha
	bq.b0 = (1.0 + cosW0) / 2.0 / a0
	bq.b1 = -(1.0 + cosW0) / a0
	bq.b2 = (1.0 + cosW0) / 2.0 / a0
	bq.a1 = -2.0 * cosW0 / a0
	bq.a2 = (1.0 - alpha) / a0
	return bq
}

// clampOmega keeps the normalized frequency away from DC and Nyquist where
// the coefficient formulas degenerate.
func clampOmega(w0 float64) float64 {
	if w0 >= math.Pi {
		return math.Pi * 0.9999
	}
	if w0 <= 0 {
		return math.Pi * 1e-4
	}
	return w0
}

// Process applies the section to a single sample.
func (bq *Biquad) Process(input float64) float64 {
	w := input - bq.a1*bq.w1 - bq.a2*bq.w2
	output := bq.b0*w + bq.b1*bq.w1 + bq.b2*bq.w2
	bq.w2 = bq.w1
	bq.w1 = w
	return output
}

// Reset clears the section's delay line.
func (bq *Biquad) Reset() {
	bq.w1, bq.w2 = 0.0, 0.0
}

// Butterworth 4th-order section Q values (poles at 22.5 and 67.5 degrees).
var butterworthQ4 = [2]float64{0.5411961001, 1.3065629649}

// BandPass implements a 4th-order Butterworth band-pass filter as a cascade
// of high-pass sections at the low edge and low-pass sections at the high
// edge. Band edges are clamped inside (0, Nyquist) so that out-of-range
// requests degrade instead of failing.
type BandPass struct {
	sampleRate int
	lowHz      float64
	highHz     float64
	sections   []*Biquad
}

// NewBandPass creates a band-pass filter for the [lowHz, highHz] band.
//
// Parameters:
//   - sampleRate: Sample rate in Hz
//   - lowHz: Lower band edge in Hz
//   - highHz: Upper band edge in Hz
func NewBandPass(sampleRate int, lowHz, highHz float64) *BandPass {
	nyquist := float64(sampleRate) / 2.0
	lo := math.Max(lowHz, 1e-4*nyquist)
	hi := math.Min(highHz, 0.9999*nyquist)
	if hi <= lo {
		hi = math.Min(lo*1.001, 0.9999*nyquist)
	}

	sections := make([]*Biquad, 0, 4)
	for _, q := range butterworthQ4 {
		sections = append(sections, NewHighPassBiquad(sampleRate, lo, q))
	}
	for _, q := range butterworthQ4 {
		sections = append(sections, NewLowPassBiquad(sampleRate, hi, q))
	}

	return &BandPass{
		sampleRate: sampleRate,
		lowHz:      lo,
		highHz:     hi,
		sections:   sections,
	}
}

// ProcessBuffer filters an entire buffer, starting from cleared state.
func (bp *BandPass) ProcessBuffer(input []float64) []float64 {
	bp.Reset()
	output := make([]float64, len(input))
	for i, sample := range input {
		y := sample
		for _, section := range bp.sections {
			y = section.Process(y)
		}
		output[i] = y
	}
	return output
}

// Reset clears all section delay lines.
func (bp *BandPass) Reset() {
	for _, section := range bp.sections {
		section.Reset()
	}
}

// GetBand returns the effective (clamped) band edges in Hz.
func (bp *BandPass) GetBand() (lowHz, highHz float64) {
	return bp.lowHz, bp.highHz
}
