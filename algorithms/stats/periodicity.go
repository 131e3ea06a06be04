package stats

import (
	"github.com/SammyDuDu/kospa-engine/algorithms/spectral"
	"gonum.org/v1/gonum/stat"
)

// Periodicity measures how periodic a segment is within a pitch range,
// as the peak of the energy-normalized autocorrelation over the lag range
// corresponding to [minFreq, maxFreq]. Values are clipped to [0, 1]; a
// pure tone in range scores near 1, noise near 0.
//
// The autocorrelation is computed in the frequency domain
// (Wiener-Khinchin) with zero padding for linear correlation.
//
// References:
//   - Rabiner, L., Schafer, R. (1978). "Digital Processing of Speech Signals"
type Periodicity struct {
	sampleRate int
	minFreq    float64
	maxFreq    float64
	fft        *spectral.FFT
}

// NewPeriodicity creates a periodicity analyzer over the speech pitch
// range 60-500 Hz.
func NewPeriodicity(sampleRate int) *Periodicity {
	return NewPeriodicityWithRange(sampleRate, 60.0, 500.0)
}

// NewPeriodicityWithRange creates a periodicity analyzer with an explicit
// frequency range.
func NewPeriodicityWithRange(sampleRate int, minFreq, maxFreq float64) *Periodicity {
	return &Periodicity{
		sampleRate: sampleRate,
		minFreq:    minFreq,
		maxFreq:    maxFreq,
		fft:        spectral.NewFFT(),
	}
}

// Score returns the periodicity of the segment. Segments shorter than
// 20 ms score 0.
func (p *Periodicity) Score(segment []float64) float64 {
	if len(segment) < int(0.02*float64(p.sampleRate)) {
		return 0.0
	}

	x := make([]float64, len(segment))
	copy(x, segment)
	mean := stat.Mean(x, nil)
	denom := 1e-12
	for i := range x {
		x[i] -= mean
		denom += x[i] * x[i]
	}

	lagMin := int(float64(p.sampleRate) / p.maxFreq)
	lagMax := int(float64(p.sampleRate) / p.minFreq)
	if lagMax > len(x)-1 {
		lagMax = len(x) - 1
	}
	if lagMin < 1 || lagMin >= lagMax {
		return 0.0
	}

	// Zero-pad to at least twice the length for linear autocorrelation.
	padded := make([]float64, 2*len(x))
	copy(padded, x)
	spectrum := p.fft.Compute(padded)
	for i, c := range spectrum {
		re := real(c)
		im := imag(c)
		spectrum[i] = complex(re*re+im*im, 0)
	}
	acf := p.fft.ComputeInverseReal(spectrum)

	peak := 0.0
	for lag := lagMin; lag <= lagMax; lag++ {
		if acf[lag] > peak {
			peak = acf[lag]
		}
	}

	score := peak / denom
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
