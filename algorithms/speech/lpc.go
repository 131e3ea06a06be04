package speech

import (
	"fmt"
	"math"
)

// LPCAnalyzer performs Linear Predictive Coding analysis.
// LPC models the vocal tract as an all-pole filter, essential for
// formant extraction and vocal tract modeling.
type LPCAnalyzer struct {
	sampleRate int
	order      int // LPC order (typically 12 + fs/1000)
}

// LPCResult contains LPC analysis results
type LPCResult struct {
	Coefficients   []float64 `json:"coefficients"`    // Predictor coefficients (a1, a2, ..., ap)
	Gain           float64   `json:"gain"`            // LPC gain
	ResidualEnergy float64   `json:"residual_energy"` // Prediction error energy
	Order          int       `json:"order"`           // LPC order used
}

// NewLPCAnalyzer creates a new LPC analyzer
func NewLPCAnalyzer(sampleRate int, order int) *LPCAnalyzer {
	if order <= 0 {
		order = 12 + sampleRate/1000 // Rule of thumb for speech
	}

	return &LPCAnalyzer{
		sampleRate: sampleRate,
		order:      order,
	}
}

// Analyze performs LPC analysis on the input signal
func (lpc *LPCAnalyzer) Analyze(signal []float64) (*LPCResult, error) {
	if len(signal) < lpc.order*2 {
		return nil, fmt.Errorf("signal too short for LPC analysis of order %d", lpc.order)
	}

	// Autocorrelation sequence up to the LPC order
	R := make([]float64, lpc.order+1)
	for lag := 0; lag <= lpc.order; lag++ {
		sum := 0.0
		for i := 0; i+lag < len(signal); i++ {
			sum += signal[i] * signal[i+lag]
		}
		R[lag] = sum
	}

	coeffs, gain, residualEnergy, err := lpc.levinsonDurbin(R)
	if err != nil {
		return nil, fmt.Errorf("Levinson-Durbin recursion failed: %w", err)
	}

	return &LPCResult{
		Coefficients:   coeffs,
		Gain:           gain,
		ResidualEnergy: residualEnergy,
		Order:          lpc.order,
	}, nil
}

// levinsonDurbin solves the normal equations for the predictor
// coefficients. Convention: the prediction is s^[n] = sum(a[j]*s[n-j]),
// so the inverse filter is A(z) = 1 - sum(a[j]*z^-j).
func (lpc *LPCAnalyzer) levinsonDurbin(R []float64) ([]float64, float64, float64, error) {
	p := lpc.order

	if len(R) < p+1 {
		return nil, 0, 0, fmt.Errorf("insufficient autocorrelation values")
	}

	if R[0] == 0 {
		return nil, 0, 0, fmt.Errorf("zero energy signal")
	}

	a := make([]float64, p+1)
	E := R[0]

	a[0] = 1.0

	for i := 1; i <= p; i++ {
		numerator := R[i]
		for j := 1; j < i; j++ {
			numerator -= a[j] * R[i-j]
		}

		if E == 0 {
			break
		}

		k := numerator / E

		a[i] = k
		for j := 1; j <= i/2; j++ {
			tmp := a[j] - k*a[i-j]
			a[i-j] = a[i-j] - k*a[j]
			a[j] = tmp
		}

		E *= (1 - k*k)
		if E <= 0 {
			break
		}
	}

	gain := math.Sqrt(math.Max(E, 0))
	return a, gain, E, nil
}

// GetSpectralEnvelope computes the LPC spectral envelope
// |H(e^jw)| = 1 / |1 - sum(a[j]*e^-jwj)| on nfft/2+1 bins.
func (lpc *LPCAnalyzer) GetSpectralEnvelope(coeffs []float64, nfft int) []float64 {
	if nfft <= 0 {
		nfft = 512
	}

	envelope := make([]float64, nfft/2+1)

	for k := range envelope {
		omega := 2 * math.Pi * float64(k) / float64(nfft)

		realPart := 1.0
		imagPart := 0.0

		for i := 1; i < len(coeffs); i++ {
			angle := -float64(i) * omega
			realPart -= coeffs[i] * math.Cos(angle)
			imagPart -= coeffs[i] * math.Sin(angle)
		}

		magnitude := math.Sqrt(realPart*realPart + imagPart*imagPart)
		if magnitude > 0 {
			envelope[k] = 1.0 / magnitude
		}
	}

	return envelope
}
