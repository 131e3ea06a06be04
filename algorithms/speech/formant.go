package speech

import (
	"fmt"
	"math"
	"sort"

	"github.com/SammyDuDu/kospa-engine/algorithms/windowing"
)

// FormantAnalyzer extracts vocal tract resonances (formants) from a short
// analysis frame. F2 carries most of the place-of-articulation cue for
// consonant onsets; F3 separates liquids from glides.
//
// The pipeline is classical LPC formant estimation: pre-emphasis, Hamming
// window, Levinson-Durbin LPC, peak picking on the all-pole spectral
// envelope with spacing and prominence validation.
type FormantAnalyzer struct {
	sampleRate  int
	windowSize  int     // Analysis frame in samples (25 ms)
	maxFormants int     // Formants kept, ordered by frequency
	maxFreq     float64 // Upper formant search bound in Hz
	minFreq     float64 // Lower formant search bound in Hz

	lpcOrder    int
	preEmphasis float64

	lpcAnalyzer *LPCAnalyzer
	window      *windowing.Hamming
}

// FormantData represents a single formant measurement
type FormantData struct {
	Frequency float64 `json:"frequency"` // Formant frequency (Hz)
	Amplitude float64 `json:"amplitude"` // Envelope amplitude (relative)
}

// NewFormantAnalyzer creates a formant analyzer searching up to five
// formants below 5500 Hz, the conventional ceiling for adult speech.
func NewFormantAnalyzer(sampleRate int) *FormantAnalyzer {
	windowSize := int(0.025 * float64(sampleRate))
	lpcOrder := 12 + sampleRate/1000 // Rule of thumb for speech

	return &FormantAnalyzer{
		sampleRate:  sampleRate,
		windowSize:  windowSize,
		maxFormants: 5,
		maxFreq:     5500.0,
		minFreq:     50.0,
		lpcOrder:    lpcOrder,
		preEmphasis: 0.97,
		lpcAnalyzer: NewLPCAnalyzer(sampleRate, lpcOrder),
		window:      windowing.NewHamming(windowSize, true),
	}
}

// AnalyzeAt extracts formants from the 25 ms frame centered at time t.
// The frame is clamped to the signal bounds.
func (f *FormantAnalyzer) AnalyzeAt(signal []float64, t float64) ([]FormantData, error) {
	if len(signal) < f.windowSize {
		return nil, fmt.Errorf("signal too short for formant analysis (need at least %d samples)", f.windowSize)
	}

	center := int(t * float64(f.sampleRate))
	start := center - f.windowSize/2
	if start < 0 {
		start = 0
	}
	if start+f.windowSize > len(signal) {
		start = len(signal) - f.windowSize
	}

	frame := f.preprocess(signal[start : start+f.windowSize])

	lpcResult, err := f.lpcAnalyzer.Analyze(frame)
	if err != nil {
		return nil, fmt.Errorf("LPC analysis failed: %w", err)
	}

	return f.findFormants(lpcResult), nil
}

// FrequencyAt returns the frequency of the n-th formant (1-based) at time
// t, or nil when that formant cannot be resolved.
func (f *FormantAnalyzer) FrequencyAt(signal []float64, t float64, n int) *float64 {
	formants, err := f.AnalyzeAt(signal, t)
	if err != nil || n < 1 || n > len(formants) {
		return nil
	}
	freq := formants[n-1].Frequency
	if math.IsNaN(freq) || freq <= 0 {
		return nil
	}
	return &freq
}

func (f *FormantAnalyzer) preprocess(signal []float64) []float64 {
	frame := make([]float64, len(signal))
	frame[0] = signal[0]
	for i := 1; i < len(signal); i++ {
		frame[i] = signal[i] - f.preEmphasis*signal[i-1]
	}

	coeffs := f.window.GetCoefficients()
	for i := range frame {
		frame[i] *= coeffs[i]
	}
	return frame
}

func (f *FormantAnalyzer) findFormants(lpcResult *LPCResult) []FormantData {
	nfft := 1024
	envelope := f.lpcAnalyzer.GetSpectralEnvelope(lpcResult.Coefficients, nfft)
	freqResolution := float64(f.sampleRate) / float64(nfft)

	maxVal := 0.0
	for _, v := range envelope {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		return nil
	}

	var formants []FormantData
	const minPeakHeight = 0.1 // Relative prominence threshold

	for i := 1; i < len(envelope)-1; i++ {
		if envelope[i] <= envelope[i-1] || envelope[i] <= envelope[i+1] {
			continue
		}
		if envelope[i]/maxVal <= minPeakHeight {
			continue
		}
		frequency := float64(i) * freqResolution
		if frequency < f.minFreq || frequency > f.maxFreq {
			continue
		}
		formants = append(formants, FormantData{
			Frequency: frequency,
			Amplitude: envelope[i],
		})
	}

	sort.Slice(formants, func(i, j int) bool {
		return formants[i].Frequency < formants[j].Frequency
	})

	formants = f.ensureSpacing(formants)

	if len(formants) > f.maxFormants {
		formants = formants[:f.maxFormants]
	}
	return formants
}

// ensureSpacing merges peaks closer than 200 Hz, keeping the stronger one.
func (f *FormantAnalyzer) ensureSpacing(formants []FormantData) []FormantData {
	if len(formants) <= 1 {
		return formants
	}

	const minSpacing = 200.0
	spaced := []FormantData{formants[0]}

	for i := 1; i < len(formants); i++ {
		last := &spaced[len(spaced)-1]
		if formants[i].Frequency-last.Frequency >= minSpacing {
			spaced = append(spaced, formants[i])
		} else if formants[i].Amplitude > last.Amplitude {
			*last = formants[i]
		}
	}
	return spaced
}
