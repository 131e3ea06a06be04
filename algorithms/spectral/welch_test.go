package spectral

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 16000

func testSine(freq, amplitude, seconds float64) []float64 {
	n := int(seconds * testSampleRate)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2.0*math.Pi*freq*float64(i)/testSampleRate)
	}
	return out
}

func TestWelchEmptySignal(t *testing.T) {
	w := NewWelch(testSampleRate)
	psd := w.Compute(nil)
	assert.Empty(t, psd.Frequencies)
	assert.Empty(t, psd.Power)
}

func TestWelchSineConcentratesPower(t *testing.T) {
	w := NewWelch(testSampleRate)

	// 1000 Hz is bin-exact with nperseg 1024 at 16 kHz (15.625 Hz bins).
	psd := w.Compute(testSine(1000.0, 1.0, 0.5))
	require.NotEmpty(t, psd.Power)

	peakIdx := 0
	for i, p := range psd.Power {
		if p > psd.Power[peakIdx] {
			peakIdx = i
		}
	}
	assert.InDelta(t, 1000.0, psd.Frequencies[peakIdx], 20.0)

	centroid, ok := psd.CentroidInBand(500.0, 2000.0)
	require.True(t, ok)
	assert.InDelta(t, 1000.0, centroid, 30.0)
}

func TestWelchShortSignalSingleSegment(t *testing.T) {
	w := NewWelch(testSampleRate)

	psd := w.Compute(testSine(1000.0, 1.0, 0.03)) // 480 samples < 1024
	require.NotEmpty(t, psd.Power)
	assert.Len(t, psd.Power, 480/2+1)
	assert.Equal(t, psd.Frequencies[len(psd.Frequencies)-1], float64(testSampleRate)/2.0)
}

func TestWelchFrequencyAxis(t *testing.T) {
	w := NewWelch(testSampleRate)
	psd := w.Compute(testSine(500.0, 0.5, 0.5))

	require.GreaterOrEqual(t, len(psd.Frequencies), 2)
	assert.Equal(t, 0.0, psd.Frequencies[0])
	binWidth := float64(testSampleRate) / 1024.0
	assert.InDelta(t, binWidth, psd.Frequencies[1]-psd.Frequencies[0], 1e-9)
}

func TestWelchPowerFloored(t *testing.T) {
	w := NewWelch(testSampleRate)
	psd := w.Compute(make([]float64, 4096))
	for _, p := range psd.Power {
		assert.GreaterOrEqual(t, p, 1e-18)
	}
}

func TestCentroidInBandEmptyBand(t *testing.T) {
	psd := &PSD{
		Frequencies: []float64{0, 100, 200},
		Power:       []float64{1, 1, 1},
	}
	_, ok := psd.CentroidInBand(5000.0, 8000.0)
	assert.False(t, ok)
}

func TestBandEnergyAndRatio(t *testing.T) {
	psd := &PSD{
		Frequencies: []float64{0, 100, 200, 300, 400},
		Power:       []float64{1, 2, 4, 8, 16},
	}

	assert.Equal(t, 3.0, psd.BandEnergy(0.0, 100.0))
	assert.Equal(t, 28.0, psd.BandEnergy(200.0, 400.0))
	assert.Equal(t, 0.0, psd.BandEnergy(1000.0, 2000.0))
	assert.Equal(t, 31.0, psd.TotalPower())

	// 10*log10(28/3) with the stabilizer.
	ratio := psd.BandRatioDB(200.0, 400.0, 0.0, 100.0)
	assert.InDelta(t, 10.0*math.Log10(28.0/3.0), ratio, 1e-6)
}

func TestWelchNoiseSpreadsCentroid(t *testing.T) {
	w := NewWelch(testSampleRate)

	rng := rand.New(rand.NewSource(3))
	noise := make([]float64, 8000)
	for i := range noise {
		noise[i] = rng.NormFloat64()
	}

	// White noise centroid over the full band sits near mid-band, far
	// from either edge.
	psd := w.Compute(noise)
	centroid, ok := psd.CentroidInBand(0.0, 8000.0)
	require.True(t, ok)
	assert.Greater(t, centroid, 2000.0)
	assert.Less(t, centroid, 6000.0)
}
