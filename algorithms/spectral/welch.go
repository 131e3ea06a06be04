package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/SammyDuDu/kospa-engine/algorithms/windowing"
)

// PSD holds a one-sided power spectral density estimate.
type PSD struct {
	Frequencies []float64 `json:"frequencies"` // Bin center frequencies in Hz
	Power       []float64 `json:"power"`       // Power density per bin, floored at 1e-18
}

// Welch estimates power spectral densities using Welch's method: Hann
// windowed segments of up to 1024 samples with 50% overlap, per-segment
// mean removal, one-sided density scaling.
//
// References:
//   - P. Welch, "The use of fast Fourier transform for the estimation of
//     power spectra", IEEE Trans. Audio Electroacoust., 1967
type Welch struct {
	sampleRate int
	maxSegment int
	fft        *FFT
}

// NewWelch creates a Welch PSD estimator for the given sample rate.
func NewWelch(sampleRate int) *Welch {
	return &Welch{
		sampleRate: sampleRate,
		maxSegment: 1024,
		fft:        NewFFT(),
	}
}

// Compute returns the PSD of the signal. Signals shorter than the segment
// size use a single full-length segment; empty signals yield an empty PSD.
func (w *Welch) Compute(signal []float64) *PSD {
	if len(signal) == 0 {
		return &PSD{Frequencies: []float64{}, Power: []float64{}}
	}

	nperseg := w.maxSegment
	if len(signal) < nperseg {
		nperseg = len(signal)
	}
	hop := nperseg / 2
	if hop < 1 {
		hop = 1
	}

	window := windowing.NewHann(nperseg, false)
	windowPower := 0.0
	for _, c := range window.GetCoefficients() {
		windowPower += c * c
	}
	scale := 1.0 / (float64(w.sampleRate) * windowPower)

	numBins := nperseg/2 + 1
	power := make([]float64, numBins)
	segments := 0

	buf := make([]float64, nperseg)
	for start := 0; start+nperseg <= len(signal); start += hop {
		copy(buf, signal[start:start+nperseg])
		mean := stat.Mean(buf, nil)
		for i := range buf {
			buf[i] -= mean
		}
		windowed := window.Apply(buf)

		spectrum := w.fft.Compute(windowed)
		for k := 0; k < numBins; k++ {
			re := real(spectrum[k])
			im := imag(spectrum[k])
			p := (re*re + im*im) * scale
			// One-sided density: double everything except DC and Nyquist.
			if k != 0 && !(nperseg%2 == 0 && k == numBins-1) {
				p *= 2.0
			}
			power[k] += p
		}
		segments++
	}

	if segments == 0 {
		return &PSD{Frequencies: []float64{}, Power: []float64{}}
	}

	frequencies := make([]float64, numBins)
	for k := 0; k < numBins; k++ {
		frequencies[k] = float64(k) * float64(w.sampleRate) / float64(nperseg)
		power[k] /= float64(segments)
		if power[k] < 1e-18 {
			power[k] = 1e-18
		}
	}

	return &PSD{Frequencies: frequencies, Power: power}
}

// CentroidInBand returns the power-weighted mean frequency restricted to
// [lowHz, highHz]. The second return value is false when the band holds
// no bins.
func (p *PSD) CentroidInBand(lowHz, highHz float64) (float64, bool) {
	weightedSum := 0.0
	totalPower := 0.0
	found := false
	for i, f := range p.Frequencies {
		if f >= lowHz && f <= highHz {
			weightedSum += f * p.Power[i]
			totalPower += p.Power[i]
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return weightedSum / (totalPower + 1e-12), true
}

// BandEnergy returns the total power within [lowHz, highHz].
func (p *PSD) BandEnergy(lowHz, highHz float64) float64 {
	if len(p.Power) == 0 {
		return 0
	}
	sum := 0.0
	for i, f := range p.Frequencies {
		if f >= lowHz && f <= highHz {
			sum += p.Power[i]
		}
	}
	return sum
}

// BandRatioDB returns the energy ratio between two bands in dB, with a
// 1e-12 stabilizer on both sides. Callers clamp to their documented
// ranges.
func (p *PSD) BandRatioDB(numLowHz, numHighHz, denLowHz, denHighHz float64) float64 {
	num := p.BandEnergy(numLowHz, numHighHz)
	den := p.BandEnergy(denLowHz, denHighHz)
	return 10.0 * math.Log10((num+1e-12)/(den+1e-12))
}

// TotalPower returns the summed power of the estimate.
func (p *PSD) TotalPower() float64 {
	return floats.Sum(p.Power)
}
