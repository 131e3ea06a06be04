package analysis

import (
	"math"
	"math/rand"

	"github.com/SammyDuDu/kospa-engine/algorithms/filters"
)

const testSampleRate = 16000

// sine generates amplitude*sin(2*pi*freq*t) for the given duration.
func sine(freq, amplitude, seconds float64) []float64 {
	n := int(seconds * testSampleRate)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2.0*math.Pi*freq*float64(i)/testSampleRate)
	}
	return out
}

// bandNoise generates seeded white noise band-limited to [low, high] Hz
// and scaled to the requested RMS.
func bandNoise(low, high, rms, seconds float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	n := int(seconds * testSampleRate)
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = rng.NormFloat64()
	}
	shaped := filters.NewBandPass(testSampleRate, low, high).ProcessBuffer(raw)

	sumSq := 0.0
	for _, v := range shaped {
		sumSq += v * v
	}
	current := math.Sqrt(sumSq / float64(len(shaped)))
	if current > 0 {
		for i := range shaped {
			shaped[i] *= rms / current
		}
	}
	return shaped
}

// silence generates a zero signal.
func silence(seconds float64) []float64 {
	return make([]float64, int(seconds*testSampleRate))
}

// concat joins signals into one buffer.
func concat(parts ...[]float64) []float64 {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]float64, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// mix adds b into a sample by sample, padding with the longer input.
func mix(a, b []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := range out {
		if i < len(a) {
			out[i] += a[i]
		}
		if i < len(b) {
			out[i] += b[i]
		}
	}
	return out
}
